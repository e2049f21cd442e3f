package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fiction-occupations/enricher/internal/booklist"
	"github.com/fiction-occupations/enricher/internal/googlebooks"
	"github.com/fiction-occupations/enricher/internal/storage"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

func newMetadataCmd() *cobra.Command {
	var input, output string
	var delay time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Fetch genres and descriptions from Google Books",
		Long: `Look up every book of a list on Google Books and append its categories and
description to a resumable CSV table with columns Title, Author, Genres and
Description. Books Google Books does not know are written as "Not Found".

GOOGLE_API_KEY is used when set.`,
		Example: `  enricher metadata --input bestsellers.csv --output book_metadata.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := booklist.NewLoader(input).LoadSample(limit)
			if err != nil {
				return fmt.Errorf("failed to load book list: %w", err)
			}

			var opts []option.ClientOption
			if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
				opts = append(opts, option.WithAPIKey(key))
			}
			client, err := googlebooks.NewClient(cmd.Context(), 1, opts...)
			if err != nil {
				return err
			}

			table, err := storage.Open(output, googlebooks.ColumnTitle, googlebooks.ColumnAuthor)
			if err != nil {
				return fmt.Errorf("failed to open output table: %w", err)
			}

			f := &googlebooks.Fetcher{Books: client, Output: table, Delay: delay}
			stats, err := f.Run(cmd.Context(), books)
			if stats != nil {
				slog.Info("Metadata fetch finished",
					"fetched", stats.Fetched,
					"not_found", stats.NotFound,
					"skipped", stats.Skipped)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to the book list (csv, jsonl or parquet) (required)")
	cmd.Flags().StringVar(&output, "output", "book_metadata.csv", "Path to the output CSV table")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Pause after each looked-up book")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only read the first N books of the list (0 for all)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
