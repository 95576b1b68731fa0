package digest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"signalist/internal/model"
	"signalist/internal/resolver"
	"signalist/pkg/llm"
	"signalist/pkg/news"

	"github.com/go-playground/assert/v2"
)

type fakeResolver struct {
	symbols map[string][]string
	err     error
	panicOn string
}

func (f *fakeResolver) Resolve(ctx context.Context, identity resolver.Identity) ([]string, error) {
	if identity.ID == f.panicOn && f.panicOn != "" {
		panic("resolver blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.symbols[identity.ID], nil
}

type fetchCall struct {
	symbols []string
	limit   int
}

type fakeFetcher struct {
	calls        []fetchCall
	personalized []news.Article
	general      []news.Article
	err          error
}

func (f *fakeFetcher) Fetch(ctx context.Context, symbols []string, limit int) ([]news.Article, error) {
	f.calls = append(f.calls, fetchCall{symbols: symbols, limit: limit})
	if f.err != nil {
		return nil, f.err
	}
	if len(symbols) > 0 {
		return f.personalized, nil
	}
	return f.general, nil
}

type fakeLLM struct {
	text  string
	err   error
	calls int
}

func (f *fakeLLM) SummarizeDigest(ctx context.Context, articles []llm.DigestInput) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeLLM) GenerateWelcomeIntro(ctx context.Context, profile llm.UserProfile) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func makeArticles(n int) []news.Article {
	articles := make([]news.Article, n)
	for i := range articles {
		articles[i] = news.Article{Headline: fmt.Sprintf("Headline %d", i+1)}
	}
	return articles
}

func testUser() model.User {
	return model.User{ID: "u1", Email: "u1@example.com", Name: "User One"}
}

func TestPipelineHappyPath(t *testing.T) {
	res := &fakeResolver{symbols: map[string][]string{"u1": {"AAPL", "MSFT"}}}
	fetcher := &fakeFetcher{personalized: makeArticles(3)}
	client := &fakeLLM{text: "Markets were calm."}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, model.StageNone, outcome.FailureStage)
	assert.Equal(t, []string{"AAPL", "MSFT"}, outcome.ResolvedSymbols)
	assert.Equal(t, 3, len(outcome.Articles))
	assert.Equal(t, "Markets were calm.", outcome.SummaryText)
	assert.Equal(t, 1, len(fetcher.calls))
}

func TestPipelineCapsArticlesAtSix(t *testing.T) {
	res := &fakeResolver{symbols: map[string][]string{"u1": {
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J",
	}}}
	fetcher := &fakeFetcher{personalized: makeArticles(9)}
	client := &fakeLLM{text: "Busy day."}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, 6, len(outcome.Articles))
	assert.Equal(t, model.StageNone, outcome.FailureStage)
}

func TestPipelineGeneralFallbackWhenNoSymbols(t *testing.T) {
	res := &fakeResolver{}
	fetcher := &fakeFetcher{general: makeArticles(2)}
	client := &fakeLLM{text: "General market news."}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	// Exactly one fetch, with an empty symbol sequence.
	assert.Equal(t, 1, len(fetcher.calls))
	assert.Equal(t, 0, len(fetcher.calls[0].symbols))
	assert.Equal(t, 2, len(outcome.Articles))
	assert.Equal(t, model.StageNone, outcome.FailureStage)
}

func TestPipelineGeneralFallbackWhenPersonalizedEmpty(t *testing.T) {
	res := &fakeResolver{symbols: map[string][]string{"u1": {"AAPL"}}}
	fetcher := &fakeFetcher{general: makeArticles(4)}
	client := &fakeLLM{text: "Fallback digest."}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, 2, len(fetcher.calls))
	assert.Equal(t, []string{"AAPL"}, fetcher.calls[0].symbols)
	assert.Equal(t, 0, len(fetcher.calls[1].symbols))
	assert.Equal(t, 4, len(outcome.Articles))
}

func TestPipelineNoNewsAnywhere(t *testing.T) {
	res := &fakeResolver{}
	fetcher := &fakeFetcher{}
	client := &fakeLLM{text: "should not be called"}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, llm.NoNewsFallback, outcome.SummaryText)
	assert.Equal(t, 0, client.calls)
	assert.Equal(t, model.StageNone, outcome.FailureStage)
}

func TestPipelineResolverErrorDegradesToGeneral(t *testing.T) {
	res := &fakeResolver{err: errors.New("identity store down")}
	fetcher := &fakeFetcher{general: makeArticles(1)}
	client := &fakeLLM{text: "General only."}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, model.StageResolve, outcome.FailureStage)
	assert.Equal(t, 0, len(outcome.ResolvedSymbols))
	assert.Equal(t, 1, len(outcome.Articles))
	assert.Equal(t, "General only.", outcome.SummaryText)
}

func TestPipelineFetchErrorStillProducesOutcome(t *testing.T) {
	res := &fakeResolver{symbols: map[string][]string{"u1": {"AAPL"}}}
	fetcher := &fakeFetcher{err: errors.New("news service down")}
	client := &fakeLLM{text: "unused"}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, model.StageFetch, outcome.FailureStage)
	assert.Equal(t, 0, len(outcome.Articles))
	assert.Equal(t, llm.NoNewsFallback, outcome.SummaryText)
}

func TestPipelineSummarizerErrorUsesFallback(t *testing.T) {
	res := &fakeResolver{symbols: map[string][]string{"u1": {"AAPL"}}}
	fetcher := &fakeFetcher{personalized: makeArticles(2)}
	client := &fakeLLM{err: errors.New("model timeout")}

	p := NewPipeline(res, fetcher, NewSummarizer(client))
	outcome := p.Run(context.Background(), testUser())

	assert.Equal(t, model.StageSummarize, outcome.FailureStage)
	assert.Equal(t, llm.NoNewsFallback, outcome.SummaryText)
	assert.Equal(t, 2, len(outcome.Articles))
}
