// Package enrichment turns best-seller records into merged protagonist and
// profession rows, resumably.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fiction-occupations/enricher/internal/models"
)

// DefaultDelay is the pause after each queried book.
const DefaultDelay = 2 * time.Second

// ErrMissingField is returned for an input record without a title or author.
var ErrMissingField = errors.New("missing required field")

// Store is the append-only output table.
type Store interface {
	// CompletedKeys returns the keys already present in the table.
	CompletedKeys() map[models.Key]struct{}
	// CountColumns returns how many header columns start with prefix.
	CountColumns(prefix string) int
	// Append writes one row under header, widening the table if needed.
	Append(header, row []string) error
}

// Status of one input record after a run.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome describes what happened to one input record.
type Outcome struct {
	Key          models.Key
	Status       Status
	Protagonists int
	// UnknownCodes and UncertainCodes count the 0 and 9 occupation codes of
	// the merged answer.
	UnknownCodes   int
	UncertainCodes int
	Duration       time.Duration
	Err            error
}

// RecordError wraps the failure of a single record.
type RecordError struct {
	Key models.Key
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("failed to enrich %s: %v", e.Key, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Stats summarises a run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

// Pipeline enriches books one at a time and appends each merged record to
// the output table.
type Pipeline struct {
	Knowledge KnowledgeSource
	Search    WebSearch
	Output    Store
	// Delay is the pause after each queried book.
	Delay time.Duration
	// KeepGoing logs a failed record and moves on instead of halting.
	KeepGoing bool
}

// Run processes inputs in order. Books whose key is already in the output
// table are skipped; the key set is read once, before the first book, and
// afterwards only grows by the rows this run appends.
// Without KeepGoing the first failing record halts the run and is returned as
// a *RecordError; rows appended before it stay in the table.
func (p *Pipeline) Run(ctx context.Context, inputs []models.BookQuery) (*Stats, error) {
	completed := p.Output.CompletedKeys()
	layout := NewLayout(p.Output.CountColumns(strings.TrimSpace(ProtagonistPrefix)))

	slog.Info("Starting enrichment run",
		"books", len(inputs),
		"already_processed", len(completed),
		"protagonist_columns", layout.Width())

	stats := &Stats{Outcomes: make([]Outcome, 0, len(inputs))}

	for i, q := range inputs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		progress := fmt.Sprintf("%d/%d", i+1, len(inputs))
		if _, done := completed[q.Key()]; done {
			slog.Info("Skipping book (already processed)", "title", q.Title, "author", q.Author, "progress", progress)
			stats.Skipped++
			stats.Outcomes = append(stats.Outcomes, Outcome{Key: q.Key(), Status: StatusSkipped})
			continue
		}

		slog.Info("Processing book", "title", q.Title, "author", q.Author, "progress", progress)
		start := time.Now()
		merged, err := p.process(ctx, layout, q)
		outcome := Outcome{Key: q.Key(), Duration: time.Since(start)}
		if merged != nil {
			outcome.Protagonists = len(merged.Protagonists)
			outcome.UnknownCodes, outcome.UncertainCodes = merged.CodeCounts()
		}

		if err != nil {
			recErr := &RecordError{Key: q.Key(), Err: err}
			outcome.Status = StatusFailed
			outcome.Err = recErr
			stats.Failed++
			stats.Outcomes = append(stats.Outcomes, outcome)
			if !p.KeepGoing || ctx.Err() != nil {
				return stats, recErr
			}
			slog.Error("Failed to enrich book", "title", q.Title, "author", q.Author, "err", err)
		} else {
			completed[q.Key()] = struct{}{}
			outcome.Status = StatusProcessed
			stats.Processed++
			stats.Outcomes = append(stats.Outcomes, outcome)
			slog.Info("Saved book",
				"title", q.Title,
				"author", q.Author,
				"protagonists", outcome.Protagonists,
				"unknown_codes", outcome.UnknownCodes,
				"uncertain_codes", outcome.UncertainCodes)
		}

		if err := sleep(ctx, p.Delay); err != nil {
			return stats, err
		}
	}

	slog.Info("Enrichment run complete",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return stats, nil
}

// process enriches a single book and appends its row. It returns the merged
// answer whenever one was produced, even if appending it failed.
func (p *Pipeline) process(ctx context.Context, layout *Layout, q models.BookQuery) (*models.SourceResult, error) {
	if strings.TrimSpace(q.Title) == "" || strings.TrimSpace(q.Author) == "" {
		return nil, fmt.Errorf("%w: title and author are required", ErrMissingField)
	}

	q.Summary = NormalizeContext(q.Summary)
	q.Description = NormalizeContext(q.Description)

	direct, grounded, err := QueryTwoSources(ctx, p.Knowledge, p.Search, q)
	if err != nil {
		return nil, err
	}

	rec := models.MergedRecord{Query: q, Result: Merge(*direct, *grounded)}

	n := len(rec.Result.Protagonists)
	if layout.Observe(n) {
		slog.Debug("Widening protagonist columns", "width", layout.Width())
	}

	row, err := layout.Flatten(rec)
	if err != nil {
		return &rec.Result, err
	}
	if err := p.Output.Append(layout.Header(), row); err != nil {
		return &rec.Result, fmt.Errorf("failed to append row: %w", err)
	}

	return &rec.Result, nil
}

// NormalizeContext maps the placeholders upstream scripts leave in the
// Summary and Description columns ("Not found", "0") to the empty string.
func NormalizeContext(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "not found", "0", "0.0", "nan", "none", "n/a":
		return ""
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
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
