package digest

import (
	"context"
	"log/slog"

	"signalist/internal/model"
	"signalist/pkg/llm"
	"signalist/pkg/news"
)

// Summarizer wraps a single generative-model call per user. It always
// returns non-empty text: any model failure degrades to the fixed no-news
// fallback so summarization can never block delivery.
type Summarizer struct {
	client llm.DigestClient
}

func NewSummarizer(client llm.DigestClient) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, user model.User, articles []news.Article) (string, bool) {
	if len(articles) == 0 {
		return llm.NoNewsFallback, true
	}

	inputs := make([]llm.DigestInput, len(articles))
	for i, a := range articles {
		inputs[i] = llm.DigestInput{
			Headline:    a.Headline,
			Detail:      a.Detail,
			Publisher:   a.Publisher,
			PublishedAt: a.PublishedAt,
			Symbols:     a.Symbols,
		}
	}

	text, err := s.client.SummarizeDigest(ctx, inputs)
	if err != nil {
		slog.Error("digest summarization failed", "user_id", user.ID, "error", err)
		return llm.NoNewsFallback, false
	}

	return text, true
}
