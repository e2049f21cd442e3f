// Package booklist loads the best-seller lists that feed the enrichment
// pipeline.
package booklist

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fiction-occupations/enricher/internal/models"
	"github.com/parquet-go/parquet-go"
)

// Input column names.
const (
	ColumnTitle       = "Title"
	ColumnAuthor      = "Author"
	ColumnSummary     = "Summary"
	ColumnDescription = "Description"
)

// ErrMissingColumn is returned when an input file lacks Title or Author.
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{ColumnTitle, ColumnAuthor}

// Loader reads a book list from a CSV, JSONL or Parquet file.
type Loader struct {
	path string
}

// NewLoader creates a new book list loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads every book in the file.
func (l *Loader) Load() ([]models.BookQuery, error) {
	return l.LoadSample(0)
}

// LoadSample reads at most limit books. A limit of zero or less reads all.
func (l *Loader) LoadSample(limit int) ([]models.BookQuery, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".csv":
		return l.loadCSV(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	case ".parquet":
		return l.loadParquet(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .jsonl, .parquet)", ext)
	}
}

func full(records []models.BookQuery, limit int) bool {
	return limit > 0 && len(records) >= limit
}

func (l *Loader) loadCSV(limit int) ([]models.BookQuery, error) {
	slog.Debug("Opening CSV file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", ErrMissingColumn, l.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, l.path, name)
		}
	}

	get := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.BookQuery
	for !full(records, limit) {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		records = append(records, models.BookQuery{
			Title:       get(row, ColumnTitle),
			Author:      get(row, ColumnAuthor),
			Summary:     get(row, ColumnSummary),
			Description: get(row, ColumnDescription),
		})
	}

	slog.Debug("Finished reading CSV file", "total_records", len(records))
	return records, nil
}

func (l *Loader) loadJSONL(limit int) ([]models.BookQuery, error) {
	slog.Debug("Opening JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book list: %w", err)
	}
	defer file.Close()

	var records []models.BookQuery
	scanner := bufio.NewScanner(file)

	// Summaries can be long.
	const maxCapacity = 10 * 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	lineNum := 0
	for !full(records, limit) && scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		for _, name := range requiredColumns {
			if _, ok := fields[name]; !ok {
				return nil, fmt.Errorf("%w: line %d of %s has no %q field", ErrMissingColumn, lineNum, l.path, name)
			}
		}

		records = append(records, models.BookQuery{
			Title:       text(fields[ColumnTitle]),
			Author:      text(fields[ColumnAuthor]),
			Summary:     text(fields[ColumnSummary]),
			Description: text(fields[ColumnDescription]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading book list: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

// text renders a scalar JSON value as a cell would show it.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// parquetBook mirrors the input columns of a Parquet book list.
type parquetBook struct {
	Title       string `parquet:"Title,optional"`
	Author      string `parquet:"Author,optional"`
	Summary     string `parquet:"Summary,optional"`
	Description string `parquet:"Description,optional"`
}

func (l *Loader) loadParquet(limit int) ([]models.BookQuery, error) {
	slog.Debug("Opening Parquet file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	for _, name := range requiredColumns {
		if _, ok := pf.Schema().Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, l.path, name)
		}
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[parquetBook](pf)
	defer reader.Close()

	var records []models.BookQuery
	rows := make([]parquetBook, 128)

	for !full(records, limit) {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if full(records, limit) {
				break
			}
			records = append(records, models.BookQuery{
				Title:       strings.TrimSpace(row.Title),
				Author:      strings.TrimSpace(row.Author),
				Summary:     strings.TrimSpace(row.Summary),
				Description: strings.TrimSpace(row.Description),
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records))
	return records, nil
}
