package llm

import (
	"fmt"
	"strings"
)

const digestSystemPrompt = `You are a financial newsletter writer. Given a list of market news articles, write a short personalized daily digest for one reader.

Rules:
- Neutral, calm tone; no hype words, no ALL CAPS
- Open with one sentence on the overall market mood
- Then 3 to 6 short paragraphs, one per story, most important first
- Mention tickers in parentheses after company names, e.g. Apple (AAPL)
- Keep all facts: numbers, names, dates, percentages
- Plain text only, no markdown, no JSON, no preamble`

const welcomeSystemPrompt = `You are writing the opening paragraph of a welcome email for Signalist, a stock market watchlist app. Given the new user's profile, write 2-3 warm, personal sentences referencing their goals.

Rules:
- Address the reader directly, no greeting line (the template adds one)
- No promises about returns or financial advice
- Plain text only, no markdown, no preamble`

func formatDigestPrompt(articles []DigestInput) string {
	var sb strings.Builder
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("%d. Headline: %s\n", i+1, a.Headline))
		sb.WriteString(fmt.Sprintf("Summary: %s\n", a.Detail))
		if a.Publisher != "" {
			sb.WriteString(fmt.Sprintf("Publisher: %s\n", a.Publisher))
		}
		if !a.PublishedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("Published: %s\n", a.PublishedAt.Format("2006-01-02 15:04")))
		}
		if len(a.Symbols) > 0 {
			sb.WriteString(fmt.Sprintf("Tickers: %s\n", strings.Join(a.Symbols, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatWelcomePrompt(profile UserProfile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name: %s\n", profile.Name))
	sb.WriteString(fmt.Sprintf("Country: %s\n", profile.Country))
	sb.WriteString(fmt.Sprintf("Investment goals: %s\n", profile.InvestmentGoals))
	sb.WriteString(fmt.Sprintf("Risk tolerance: %s\n", profile.RiskTolerance))
	sb.WriteString(fmt.Sprintf("Preferred industry: %s\n", profile.PreferredIndustry))
	return sb.String()
}
