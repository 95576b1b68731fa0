package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain tries each configured source in order and returns the first
// non-empty result. A source that errors or comes back empty is skipped;
// an error is returned only when every source failed.
type Chain struct {
	clients []Client
}

func NewChain(clients ...Client) *Chain {
	return &Chain{clients: clients}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.clients))
	for i, client := range c.clients {
		names[i] = client.Name()
	}
	return strings.Join(names, ",")
}

func (c *Chain) Fetch(ctx context.Context, symbols []string, limit int) ([]Article, error) {
	if len(c.clients) == 0 {
		return nil, fmt.Errorf("no news sources configured")
	}

	var lastErr error
	var failed int
	for _, client := range c.clients {
		articles, err := client.Fetch(ctx, symbols, limit)
		if err != nil {
			slog.Warn("news source failed", "source", client.Name(), "error", err)
			lastErr = err
			failed++
			continue
		}

		if len(articles) > 0 {
			return articles, nil
		}
	}

	if failed == len(c.clients) {
		return nil, fmt.Errorf("all news sources failed: %w", lastErr)
	}

	return nil, nil
}
