package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.Model("claude-haiku-4-5"),
		modelName: "claude-haiku-4-5",
	}
}

func (c *AnthropicClient) SummarizeDigest(ctx context.Context, articles []DigestInput) (string, error) {
	return c.complete(ctx, digestSystemPrompt, formatDigestPrompt(articles))
}

func (c *AnthropicClient) GenerateWelcomeIntro(ctx context.Context, profile UserProfile) (string, error) {
	return c.complete(ctx, welcomeSystemPrompt, formatWelcomePrompt(profile))
}

func (c *AnthropicClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})

	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	content := strings.TrimSpace(resp.Content[0].Text)
	if content == "" {
		return "", fmt.Errorf("empty content from anthropic")
	}

	return content, nil
}
