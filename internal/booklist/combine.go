package booklist

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fiction-occupations/enricher/internal/models"
)

// Combine loads every list in order and drops books whose (Title, Author)
// already appeared, keeping the first occurrence.
func Combine(paths ...string) ([]models.BookQuery, error) {
	seen := make(map[models.Key]struct{})
	var combined []models.BookQuery

	for _, path := range paths {
		records, err := NewLoader(path).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		dropped := 0
		for _, q := range records {
			if _, dup := seen[q.Key()]; dup {
				dropped++
				continue
			}
			seen[q.Key()] = struct{}{}
			combined = append(combined, q)
		}
		slog.Info("Combined book list", "path", path, "books", len(records), "duplicates", dropped)
	}

	return combined, nil
}

// WriteCSV writes books as a CSV book list that Loader can read back.
func WriteCSV(path string, books []models.BookQuery) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create book list: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{ColumnTitle, ColumnAuthor, ColumnSummary, ColumnDescription}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, q := range books {
		if err := w.Write([]string{q.Title, q.Author, q.Summary, q.Description}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush book list: %w", err)
	}
	return nil
}
