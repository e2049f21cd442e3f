package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fiction-occupations/enricher/internal/booklist"
	"github.com/fiction-occupations/enricher/internal/enrichment"
	"github.com/fiction-occupations/enricher/internal/models"
	"github.com/spf13/cobra"
)

// previewChars caps how much of a summary or description is printed.
const previewChars = 500

func newInspectCmd() *cobra.Command {
	var input string
	var limit int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect book list records as the enrich command will see them",
		Long: `Print the records of a book list with their summary and description after
placeholder normalization, plus the web search query each book would use.

Useful for checking a list before spending API calls on it.`,
		Example: `  # Inspect first 5 records interactively
  enricher inspect --input bestsellers.csv --limit 5 --interactive

  # Inspect all records (no limit)
  enricher inspect --input bestsellers.parquet --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := booklist.NewLoader(input).LoadSample(limit)
			if err != nil {
				return fmt.Errorf("failed to load book list: %w", err)
			}
			var in io.Reader
			if interactive {
				in = os.Stdin
			}
			return printBooks(cmd.Context(), cmd.OutOrStdout(), in, input, books)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to the book list (csv, jsonl or parquet) (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each record (press Enter to continue)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// printBooks writes one block per book. When in is non-nil it waits for a
// line on in after each block.
func printBooks(ctx context.Context, w io.Writer, in io.Reader, source string, books []models.BookQuery) error {
	fmt.Fprintf(w, "Loaded %d records from %s\n", len(books), source)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	var reader *bufio.Reader
	if in != nil {
		reader = bufio.NewReader(in)
	}

	for i, q := range books {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(w, "RECORD %d/%d\n", i+1, len(books))
		fmt.Fprintln(w, strings.Repeat("-", 80))
		fmt.Fprintf(w, "Title:          %s\n", q.Title)
		fmt.Fprintf(w, "Author:         %s\n", q.Author)
		fmt.Fprintf(w, "Search Query:   %s\n", enrichment.SearchQuery(q))
		fmt.Fprintln(w)
		printContext(w, "SUMMARY", q.Summary)
		printContext(w, "DESCRIPTION", q.Description)

		if reader == nil {
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprint(w, "Press Enter to continue to next record (or Ctrl+C to quit)...")

		inputCh := make(chan struct{})
		go func() {
			_, _ = reader.ReadString('\n')
			close(inputCh)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		case <-inputCh:
			fmt.Fprintln(w)
		}
	}

	return nil
}

func printContext(w io.Writer, label, raw string) {
	text := enrichment.NormalizeContext(raw)
	if text == "" {
		fmt.Fprintf(w, "%s: (none, raw value %q)\n", label, raw)
		return
	}

	runes := []rune(text)
	fmt.Fprintf(w, "%s (%d characters, %d words):\n", label, len(runes), len(strings.Fields(text)))
	if len(runes) > previewChars {
		fmt.Fprintf(w, "%s\n[... truncated, showing first %d of %d characters ...]\n", string(runes[:previewChars]), previewChars, len(runes))
		return
	}
	fmt.Fprintln(w, text)
}
