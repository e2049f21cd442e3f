package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fiction-occupations/enricher/internal/booklist"
	"github.com/fiction-occupations/enricher/internal/enrichment"
	"github.com/fiction-occupations/enricher/internal/knowledge"
	"github.com/fiction-occupations/enricher/internal/providers"
	"github.com/fiction-occupations/enricher/internal/runreport"
	"github.com/fiction-occupations/enricher/internal/search"
	"github.com/fiction-occupations/enricher/internal/storage"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

type enrichOptions struct {
	input       string
	output      string
	provider    string
	model       string
	temperature float64
	delay       time.Duration
	reportDir   string
	keepGoing   bool
	limit       int
}

func newEnrichCmd() *cobra.Command {
	opts := enrichOptions{}

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Identify protagonists and their professions for a book list",
		Long: `Enrich a book list with genre, protagonists, their professions with ISCO
occupation codes, and the love interest of each book.

Every book is queried twice: once from the model's own knowledge and once with
Google Custom Search snippets, the book's plot summary and its promotional
description as context. Fields from the grounded answer win unless blank.

Web search needs GOOGLE_API_KEY and GOOGLE_SEARCH_ENGINE_ID; without them the
grounded query only sees the summary and description.`,
		Example: `  # Enrich a list with the default provider (openai)
  enricher enrich --input bestsellers.csv --output enriched.csv

  # Use a local Ollama model and keep going past failures
  enricher enrich --input bestsellers.csv --output enriched.csv --provider ollama --keep-going

  # Try the first 5 books without waiting between them
  enricher enrich --input bestsellers.csv --output sample.csv --limit 5 --delay 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Path to the book list (csv, jsonl or parquet) (required)")
	cmd.Flags().StringVar(&opts.output, "output", "enriched_books.csv", "Path to the output CSV table")
	cmd.Flags().StringVar(&opts.provider, "provider", providers.DefaultProvider(), "LLM provider (openai, gemini, or ollama)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", providers.DefaultTemperature, "Sampling temperature")
	cmd.Flags().DurationVar(&opts.delay, "delay", enrichment.DefaultDelay, "Pause after each queried book")
	cmd.Flags().StringVar(&opts.reportDir, "report-dir", "runs", "Directory for the YAML run report (empty to disable)")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "Log failed books and continue instead of stopping")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Only read the first N books of the list (0 for all)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEnrich(ctx context.Context, opts enrichOptions) error {
	books, err := booklist.NewLoader(opts.input).LoadSample(opts.limit)
	if err != nil {
		return fmt.Errorf("failed to load book list: %w", err)
	}

	provider, err := newProvider(opts.provider)
	if err != nil {
		return err
	}
	source := knowledge.NewSource(provider, opts.model, opts.temperature)

	ws, err := newWebSearch(ctx)
	if err != nil {
		return err
	}

	table, err := storage.Open(opts.output, enrichment.ColumnBookTitle, enrichment.ColumnBookAuthor)
	if err != nil {
		return fmt.Errorf("failed to open output table: %w", err)
	}

	p := &enrichment.Pipeline{
		Knowledge: source,
		Search:    ws,
		Output:    table,
		Delay:     opts.delay,
		KeepGoing: opts.keepGoing,
	}

	slog.Info("Starting enrichment",
		"provider", provider.Name(),
		"model", source.Model(),
		"input", opts.input,
		"output", opts.output,
		"books", len(books))

	stats, runErr := p.Run(ctx, books)

	report := runreport.New(runreport.Config{
		Provider:    provider.Name(),
		Model:       source.Model(),
		Temperature: opts.temperature,
		Input:       opts.input,
		Output:      opts.output,
		Delay:       opts.delay.String(),
		Search:      ws != nil,
	}, stats)
	report.PrintSummary(os.Stdout)

	if opts.reportDir != "" {
		path, err := report.Save(opts.reportDir)
		if err != nil {
			slog.Error("Failed to save run report", "err", err)
		} else {
			slog.Info("Run report saved", "path", path)
		}
	}

	if errors.Is(runErr, context.Canceled) {
		slog.Warn("Run interrupted; rerun the same command to resume")
		return nil
	}
	return runErr
}

// newWebSearch returns the Custom Search client, or nil when it is not
// configured.
func newWebSearch(ctx context.Context) (enrichment.WebSearch, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	engineID := os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	if apiKey == "" || engineID == "" {
		slog.Warn("GOOGLE_API_KEY or GOOGLE_SEARCH_ENGINE_ID not set, grounded queries run without web search")
		return nil, nil
	}

	g, err := search.NewGoogle(ctx, search.Config{EngineID: engineID}, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create web search client: %w", err)
	}
	return g, nil
}
