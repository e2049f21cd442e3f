// Package runreport records what an enrichment run did.
package runreport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fiction-occupations/enricher/internal/enrichment"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration section of the run YAML
type Config struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Input       string  `yaml:"input"`
	Output      string  `yaml:"output"`
	Delay       string  `yaml:"delay"`
	Search      bool    `yaml:"search"`
	Timestamp   string  `yaml:"timestamp"`
}

// Entry is one input record of the run.
type Entry struct {
	Title        string `yaml:"title"`
	Author       string `yaml:"author"`
	Status       string `yaml:"status"`
	Protagonists   int    `yaml:"protagonists,omitempty"`
	UnknownCodes   int    `yaml:"unknowncodes,omitempty"`
	UncertainCodes int    `yaml:"uncertaincodes,omitempty"`
	Duration       string `yaml:"duration,omitempty"`
	Error          string `yaml:"error,omitempty"`
}

// Report is the complete run report.
type Report struct {
	Config  Config  `yaml:"config"`
	Totals  Totals  `yaml:"totals"`
	Results []Entry `yaml:"results"`
}

// Totals counts records by status.
type Totals struct {
	Processed      int `yaml:"processed"`
	Skipped        int `yaml:"skipped"`
	Failed         int `yaml:"failed"`
	UnknownCodes   int `yaml:"unknowncodes"`
	UncertainCodes int `yaml:"uncertaincodes"`
}

// New builds a report from run statistics.
func New(cfg Config, stats *enrichment.Stats) *Report {
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	r := &Report{Config: cfg}
	if stats == nil {
		return r
	}

	r.Totals = Totals{Processed: stats.Processed, Skipped: stats.Skipped, Failed: stats.Failed}
	r.Results = make([]Entry, 0, len(stats.Outcomes))
	for _, o := range stats.Outcomes {
		e := Entry{
			Title:          o.Key.Title,
			Author:         o.Key.Author,
			Status:         string(o.Status),
			Protagonists:   o.Protagonists,
			UnknownCodes:   o.UnknownCodes,
			UncertainCodes: o.UncertainCodes,
		}
		if o.Status == enrichment.StatusProcessed {
			r.Totals.UnknownCodes += o.UnknownCodes
			r.Totals.UncertainCodes += o.UncertainCodes
		}
		if o.Duration > 0 {
			e.Duration = o.Duration.Round(time.Millisecond).String()
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		}
		r.Results = append(r.Results, e)
	}
	return r
}

// Save writes the report as <dir>/<model>-<timestamp>.yaml and returns the
// path written.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", fileSafe(r.Config.Model), r.Config.Timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}

// PrintSummary prints a human-readable summary of the run
func (r *Report) PrintSummary(w io.Writer) {
	total := r.Totals.Processed + r.Totals.Skipped + r.Totals.Failed

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "ENRICHMENT RUN SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Provider: %s\n", r.Config.Provider)
	fmt.Fprintf(w, "Model: %s\n", r.Config.Model)
	fmt.Fprintf(w, "Input: %s\n", r.Config.Input)
	fmt.Fprintf(w, "Output: %s\n", r.Config.Output)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Records Reached: %d\n", total)
	fmt.Fprintf(w, "Processed: %d (%.1f%%)\n", r.Totals.Processed, percent(r.Totals.Processed, total))
	fmt.Fprintf(w, "Skipped: %d (%.1f%%)\n", r.Totals.Skipped, percent(r.Totals.Skipped, total))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", r.Totals.Failed, percent(r.Totals.Failed, total))
	fmt.Fprintf(w, "Unknown Occupation Codes (0): %d\n", r.Totals.UnknownCodes)
	fmt.Fprintf(w, "Uncertain Occupation Codes (9): %d\n", r.Totals.UncertainCodes)

	for _, e := range r.Results {
		if e.Status == string(enrichment.StatusFailed) {
			fmt.Fprintf(w, "  ✗ %s by %s: %s\n", e.Title, e.Author, e.Error)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// fileSafe replaces characters that model names use but paths should not.
func fileSafe(s string) string {
	if s == "" {
		return "run"
	}
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(s)
}
