package news

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

const companyNewsWindow = 5 * 24 * time.Hour

type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func (c *FinnHubClient) Fetch(ctx context.Context, symbols []string, limit int) ([]Article, error) {
	if len(symbols) == 0 {
		return c.fetchGeneral(ctx, limit)
	}
	return c.fetchBySymbols(ctx, symbols, limit)
}

func (c *FinnHubClient) fetchGeneral(ctx context.Context, limit int) ([]Article, error) {
	res, _, err := c.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub market news: %w", err)
	}

	var articles []Article
	for _, item := range res {
		if len(articles) >= limit {
			break
		}
		articles = append(articles, c.toArticle(item))
	}

	return articles, nil
}

func (c *FinnHubClient) fetchBySymbols(ctx context.Context, symbols []string, limit int) ([]Article, error) {
	now := time.Now()
	from := now.Add(-companyNewsWindow).Format("2006-01-02")
	to := now.Format("2006-01-02")

	// Spread the budget so one busy symbol cannot crowd out the rest.
	perSymbol := limit/len(symbols) + 1

	var articles []Article
	var failed int
	for _, symbol := range symbols {
		if len(articles) >= limit {
			break
		}

		res, _, err := c.client.CompanyNews(ctx).Symbol(symbol).From(from).To(to).Execute()
		if err != nil {
			slog.Warn("finnhub company news failed", "symbol", symbol, "error", err)
			failed++
			continue
		}

		taken := 0
		for _, item := range res {
			if taken >= perSymbol || len(articles) >= limit {
				break
			}
			articles = append(articles, c.toArticle(finnhub.MarketNews(item)))
			taken++
		}
	}

	if len(articles) == 0 && failed == len(symbols) {
		return nil, fmt.Errorf("finnhub company news: all %d symbols failed", failed)
	}

	return articles, nil
}

func (c *FinnHubClient) toArticle(item finnhub.MarketNews) Article {
	a := Article{
		Source: c.Name(),
	}

	if item.Id != nil {
		a.ExternalID = strconv.FormatInt(*item.Id, 10)
	}

	if item.Headline != nil {
		a.Headline = *item.Headline
	}

	if item.Summary != nil {
		a.Detail = *item.Summary
	}

	if item.Url != nil {
		a.URL = *item.Url
	}

	if item.Datetime != nil {
		a.PublishedAt = time.Unix(*item.Datetime, 0)
	}

	if item.Source != nil {
		a.Publisher = *item.Source
	}

	if item.Related != nil && *item.Related != "" {
		a.Symbols = strings.Split(*item.Related, ",")
	} else {
		a.Symbols = []string{}
	}

	return a
}
