// Package googlebooks looks up genre categories and descriptions for books
// on the Google Books API.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/time/rate"
	books "google.golang.org/api/books/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// candidates is how many volumes are compared for each lookup.
const candidates = 5

// Volume is the subset of Google Books volume info the pipeline keeps.
type Volume struct {
	Title       string
	Authors     []string
	Categories  []string
	Description string
	Similarity  float64
}

// Client queries the Google Books volumes endpoint.
type Client struct {
	svc     *books.Service
	limiter *rate.Limiter
}

// NewClient creates a Google Books client. Pass option.WithAPIKey for
// production use.
func NewClient(ctx context.Context, requestsPerSecond float64, opts ...option.ClientOption) (*Client, error) {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create books service: %w", err)
	}
	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// Lookup returns the volume whose title best matches title, or nil when the
// API has no match or rejects the request.
func (c *Client) Lookup(ctx context.Context, title, author string) (*Volume, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("intitle:%s inauthor:%s", title, author)
	resp, err := c.svc.Volumes.List(q).MaxResults(candidates).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			slog.Warn("Google Books returned an error", "title", title, "author", author, "status", apiErr.Code)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query Google Books: %w", err)
	}

	var best *Volume
	for _, item := range resp.Items {
		if item == nil || item.VolumeInfo == nil {
			continue
		}
		info := item.VolumeInfo
		sim := matchr.JaroWinkler(normalize(title), normalize(info.Title), false)
		if best == nil || sim > best.Similarity {
			best = &Volume{
				Title:       info.Title,
				Authors:     info.Authors,
				Categories:  info.Categories,
				Description: info.Description,
				Similarity:  sim,
			}
		}
	}

	if best != nil {
		slog.Debug("Matched Google Books volume", "title", title, "volume", best.Title, "similarity", best.Similarity)
	}
	return best, nil
}

// normalize lowercases s and drops everything but letters and digits.
func normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
