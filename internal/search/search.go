// Package search retrieves web search snippets from Google Custom Search.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// MaxSnippets is the number of results requested per query; it is also the
// Custom Search API's per-page maximum.
const MaxSnippets = 10

// Config configures the Google Custom Search client.
type Config struct {
	EngineID string
	// RequestsPerSecond caps outbound queries. Zero selects 1/s.
	RequestsPerSecond float64
}

// Google searches the web through a Programmable Search Engine.
type Google struct {
	svc      *customsearch.Service
	engineID string
	limiter  *rate.Limiter
}

// NewGoogle creates a search client. Pass option.WithAPIKey for production use.
func NewGoogle(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Google, error) {
	if cfg.EngineID == "" {
		return nil, fmt.Errorf("search engine ID is required")
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	return &Google{
		svc:      svc,
		engineID: cfg.EngineID,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Search returns up to MaxSnippets result snippets. An error reported by the
// API itself (quota, bad request) is logged and yields no snippets, so the
// caller proceeds without search context; transport failures are returned.
func (g *Google) Search(ctx context.Context, query string) ([]string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := g.svc.Cse.List().
		Cx(g.engineID).
		Q(query).
		Num(MaxSnippets).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			slog.Warn("Web search returned an error", "query", query, "status", apiErr.Code, "message", apiErr.Message)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	snippets := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if len(snippets) == MaxSnippets {
			break
		}
		snippet := strings.TrimSpace(item.Snippet)
		if snippet == "" {
			continue
		}
		snippets = append(snippets, snippet)
	}

	slog.Debug("Web search results", "query", query, "snippets", len(snippets))
	return snippets, nil
}
