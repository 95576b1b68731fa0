package llm

import (
	"context"
	"time"
)

// NoNewsFallback is the digest body used whenever summarization cannot
// produce content. Delivery always proceeds with it.
const NoNewsFallback = "No market news."

// WelcomeIntroFallback replaces the generated welcome intro on any failure.
const WelcomeIntroFallback = "Thanks for joining Signalist."

type DigestInput struct {
	Headline    string
	Detail      string
	Publisher   string
	PublishedAt time.Time
	Symbols     []string
}

type UserProfile struct {
	Name              string
	Country           string
	InvestmentGoals   string
	RiskTolerance     string
	PreferredIndustry string
}

// DigestClient is a single-shot summarization service: one prompt in, text
// or an error out. No streaming, no multi-turn state.
type DigestClient interface {
	SummarizeDigest(ctx context.Context, articles []DigestInput) (string, error)
	GenerateWelcomeIntro(ctx context.Context, profile UserProfile) (string, error)
}
