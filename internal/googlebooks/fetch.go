package googlebooks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fiction-occupations/enricher/internal/models"
)

// Output columns of the metadata table.
const (
	ColumnTitle       = "Title"
	ColumnAuthor      = "Author"
	ColumnGenres      = "Genres"
	ColumnDescription = "Description"

	// NotFound fills Genres and Description for books Google Books lacks.
	NotFound = "Not Found"
)

var header = []string{ColumnTitle, ColumnAuthor, ColumnGenres, ColumnDescription}

// Lookuper finds a volume for a book.
type Lookuper interface {
	Lookup(ctx context.Context, title, author string) (*Volume, error)
}

// Output is the resumable metadata table.
type Output interface {
	Has(key models.Key) bool
	Append(header, row []string) error
}

// Fetcher writes one metadata row per input book, skipping books already in
// the output.
type Fetcher struct {
	Books  Lookuper
	Output Output
	Delay  time.Duration
}

// FetchStats counts what a fetch run did.
type FetchStats struct {
	Fetched  int
	NotFound int
	Skipped  int
}

// Run looks up every book not yet in the output.
func (f *Fetcher) Run(ctx context.Context, inputs []models.BookQuery) (*FetchStats, error) {
	stats := &FetchStats{}
	seen := make(map[models.Key]struct{})

	for i, q := range inputs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		progress := fmt.Sprintf("%d/%d", i+1, len(inputs))
		if _, dup := seen[q.Key()]; dup || f.Output.Has(q.Key()) {
			slog.Info("Found existing metadata", "title", q.Title, "author", q.Author, "progress", progress)
			stats.Skipped++
			continue
		}

		slog.Info("Fetching metadata", "title", q.Title, "author", q.Author, "progress", progress)
		vol, err := f.Books.Lookup(ctx, q.Title, q.Author)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch metadata for %s: %w", q.Key(), err)
		}

		row := []string{q.Title, q.Author, NotFound, NotFound}
		if vol != nil {
			row[2] = orNA(strings.Join(vol.Categories, ", "))
			row[3] = orNA(vol.Description)
			stats.Fetched++
		} else {
			stats.NotFound++
		}

		if err := f.Output.Append(header, row); err != nil {
			return stats, fmt.Errorf("failed to append metadata: %w", err)
		}
		seen[q.Key()] = struct{}{}

		if err := wait(ctx, f.Delay); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// wait pauses between requests, returning early when ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.MissingValue
	}
	return s
}
