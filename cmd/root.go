package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "enricher",
		Short: "Protagonist and profession enrichment for best-seller lists",
		Long: `Enricher asks an LLM who the protagonists of each best-selling novel are and
what they do for a living, once from memory and once grounded in web search
results, and appends the merged answer to a resumable CSV table.

Rerunning a command skips every book already present in its output file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newEnrichCmd())
	cmd.AddCommand(newMetadataCmd())
	cmd.AddCommand(newCombineCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}
