package llm

import (
	"errors"
	"os"
)

// FromEnv picks the model provider from the configured API keys, preferring
// Anthropic when both are set.
func FromEnv() (DigestClient, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return NewAnthropicClient(key), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAIClient(key), nil
	}
	return nil, errors.New("no LLM API key configured (ANTHROPIC_API_KEY or OPENAI_API_KEY)")
}
