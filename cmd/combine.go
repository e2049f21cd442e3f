package cmd

import (
	"fmt"

	"github.com/fiction-occupations/enricher/internal/booklist"
	"github.com/spf13/cobra"
)

func newCombineCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "combine [flags] LIST...",
		Short: "Merge book lists, dropping duplicate title/author pairs",
		Long: `Concatenate book lists in the order given and write them as one CSV list.
When the same Title and Author appear more than once, the first occurrence
is kept.`,
		Example: `  enricher combine --output bestsellers.csv 1950s.csv 1960s.csv 1970s.jsonl`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := booklist.Combine(args...)
			if err != nil {
				return err
			}
			if err := booklist.WriteCSV(output, books); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d books to %s\n", len(books), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "combined_books.csv", "Path to the combined CSV list")

	return cmd
}
