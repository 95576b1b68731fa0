package news

import (
	"context"
	"time"
)

type Article struct {
	ExternalID  string
	Headline    string
	Detail      string
	URL         string
	Source      string
	PublishedAt time.Time
	Symbols     []string
	Publisher   string
}

// Client fetches recent market news. An empty symbols slice is a valid
// request meaning general market news.
type Client interface {
	Fetch(ctx context.Context, symbols []string, limit int) ([]Article, error)
	Name() string
}
