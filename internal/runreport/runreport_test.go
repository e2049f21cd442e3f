package runreport

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fiction-occupations/enricher/internal/enrichment"
	"github.com/fiction-occupations/enricher/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() *enrichment.Stats {
	return &enrichment.Stats{
		Processed: 1,
		Skipped:   1,
		Failed:    1,
		Outcomes: []enrichment.Outcome{
			{Key: models.Key{Title: "Dune", Author: "Frank Herbert"}, Status: enrichment.StatusSkipped},
			{Key: models.Key{Title: "Foo", Author: "Bar"}, Status: enrichment.StatusProcessed, Protagonists: 2, UnknownCodes: 1, UncertainCodes: 2, Duration: 1500 * time.Millisecond},
			{Key: models.Key{Title: "Baz", Author: "Qux"}, Status: enrichment.StatusFailed, Err: errors.New("malformed response")},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	report := New(Config{
		Provider:    "ollama",
		Model:       "mistral-small3.2:24b",
		Temperature: 0.3,
		Input:       "books.csv",
		Output:      "out.csv",
		Delay:       "2s",
		Timestamp:   "2025-01-02_03-04-05",
	}, sampleStats())

	path, err := report.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mistral-small3.2_24b-2025-01-02_03-04-05.yaml"), path)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, report.Config, loaded.Config)
	assert.Equal(t, Totals{Processed: 1, Skipped: 1, Failed: 1, UnknownCodes: 1, UncertainCodes: 2}, loaded.Totals)
	require.Len(t, loaded.Results, 3)
	assert.Equal(t, Entry{Title: "Foo", Author: "Bar", Status: "processed", Protagonists: 2, UnknownCodes: 1, UncertainCodes: 2, Duration: "1.5s"}, loaded.Results[1])
	assert.Equal(t, "malformed response", loaded.Results[2].Error)
}

func TestNewFillsTimestamp(t *testing.T) {
	report := New(Config{Model: "gpt-4o"}, nil)
	assert.NotEmpty(t, report.Config.Timestamp)
	assert.Empty(t, report.Results)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Provider: "openai", Model: "gpt-4o"}, sampleStats()).PrintSummary(&buf)

	out := buf.String()
	assert.Contains(t, out, "ENRICHMENT RUN SUMMARY")
	assert.Contains(t, out, "Records Reached: 3")
	assert.Contains(t, out, "Processed: 1 (33.3%)")
	assert.Contains(t, out, "Baz by Qux: malformed response")
	assert.Contains(t, out, "Unknown Occupation Codes (0): 1")
	assert.Contains(t, out, "Uncertain Occupation Codes (9): 2")
}

func TestPrintSummaryEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	New(Config{}, &enrichment.Stats{}).PrintSummary(&buf)
	assert.Contains(t, buf.String(), "Processed: 0 (0.0%)")
}
