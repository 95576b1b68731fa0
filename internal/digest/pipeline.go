package digest

import (
	"context"
	"log/slog"

	"signalist/internal/model"
	"signalist/internal/resolver"
	"signalist/pkg/news"
)

// maxArticlesPerUser caps the digest size regardless of how many articles
// the sources returned.
const maxArticlesPerUser = 6

type SymbolResolver interface {
	Resolve(ctx context.Context, identity resolver.Identity) ([]string, error)
}

type NewsFetcher interface {
	Fetch(ctx context.Context, symbols []string, limit int) ([]news.Article, error)
}

// Pipeline runs the per-user digest sequence: resolve watchlist, fetch
// news, cap, summarize. Run never returns an error; each stage degrades to
// a best-effort default and the first degraded stage is recorded on the
// outcome.
type Pipeline struct {
	resolver   SymbolResolver
	fetcher    NewsFetcher
	summarizer *Summarizer
}

func NewPipeline(symbolResolver SymbolResolver, fetcher NewsFetcher, summarizer *Summarizer) *Pipeline {
	return &Pipeline{
		resolver:   symbolResolver,
		fetcher:    fetcher,
		summarizer: summarizer,
	}
}

func (p *Pipeline) Run(ctx context.Context, user model.User) *model.UserDigestOutcome {
	outcome := &model.UserDigestOutcome{
		User:         user,
		FailureStage: model.StageNone,
	}

	symbols, err := p.resolver.Resolve(ctx, resolver.Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		slog.Error("watchlist resolution failed", "user_id", user.ID, "error", err)
		outcome.FailureStage = model.StageResolve
		outcome.FailureReason = err.Error()
		symbols = nil
	}
	outcome.ResolvedSymbols = symbols

	outcome.Articles = p.fetchWithFallback(ctx, symbols, outcome)

	summary, ok := p.summarizer.Summarize(ctx, user, outcome.Articles)
	if !ok && outcome.FailureStage == model.StageNone {
		outcome.FailureStage = model.StageSummarize
	}
	outcome.SummaryText = summary

	return outcome
}

// fetchWithFallback tries personalized news first, then falls back to
// general market news when the watchlist is empty or personalized fetch
// came back empty. A digest only ends up without articles when the general
// fallback is empty too.
func (p *Pipeline) fetchWithFallback(ctx context.Context, symbols []string, outcome *model.UserDigestOutcome) []news.Article {
	var articles []news.Article

	if len(symbols) > 0 {
		fetched, err := p.fetcher.Fetch(ctx, symbols, maxArticlesPerUser)
		if err != nil {
			slog.Error("personalized news fetch failed", "user_id", outcome.User.ID, "error", err)
			if outcome.FailureStage == model.StageNone {
				outcome.FailureStage = model.StageFetch
				outcome.FailureReason = err.Error()
			}
		}
		articles = capArticles(fetched)
	}

	if len(articles) == 0 {
		fetched, err := p.fetcher.Fetch(ctx, nil, maxArticlesPerUser)
		if err != nil {
			slog.Error("general news fetch failed", "user_id", outcome.User.ID, "error", err)
			if outcome.FailureStage == model.StageNone {
				outcome.FailureStage = model.StageFetch
				outcome.FailureReason = err.Error()
			}
			return nil
		}
		articles = capArticles(fetched)
	}

	return articles
}

func capArticles(articles []news.Article) []news.Article {
	if len(articles) > maxArticlesPerUser {
		return articles[:maxArticlesPerUser]
	}
	return articles
}
