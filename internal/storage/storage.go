// Package storage persists enrichment output as an append-only CSV table.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/fiction-occupations/enricher/internal/models"
)

// Table is a CSV file that only ever grows: rows are appended, never
// updated. Its key columns identify books for resume checks.
type Table struct {
	path         string
	titleColumn  string
	authorColumn string

	header []string
	keys   map[models.Key]struct{}
	rows   int
}

// Open reads the header and the keys of an existing table. A missing or
// empty file is a new, empty table.
func Open(path, titleColumn, authorColumn string) (*Table, error) {
	t := &Table{
		path:         path,
		titleColumn:  titleColumn,
		authorColumn: authorColumn,
		keys:         make(map[models.Key]struct{}),
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open output table: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output header: %w", err)
	}
	t.header = header

	titleIdx := slices.Index(header, titleColumn)
	authorIdx := slices.Index(header, authorColumn)
	if titleIdx < 0 || authorIdx < 0 {
		return nil, fmt.Errorf("output table %s lacks %q or %q column", path, titleColumn, authorColumn)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read output row %d: %w", t.rows+2, err)
		}
		t.rows++
		t.keys[models.Key{Title: cell(row, titleIdx), Author: cell(row, authorIdx)}] = struct{}{}
	}

	slog.Debug("Opened output table", "path", path, "rows", t.rows, "columns", len(header))
	return t, nil
}

// CompletedKeys returns a copy of the keys present when the table was opened.
func (t *Table) CompletedKeys() map[models.Key]struct{} {
	keys := make(map[models.Key]struct{}, len(t.keys))
	for k := range t.keys {
		keys[k] = struct{}{}
	}
	return keys
}

// Has reports whether key was present when the table was opened.
func (t *Table) Has(key models.Key) bool {
	_, ok := t.keys[key]
	return ok
}

// Header returns the current column names.
func (t *Table) Header() []string {
	return slices.Clone(t.header)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return t.rows
}

// CountColumns returns how many columns start with prefix.
func (t *Table) CountColumns(prefix string) int {
	n := 0
	for _, col := range t.header {
		if strings.HasPrefix(col, prefix) {
			n++
		}
	}
	return n
}

// Append writes one row. The row's values are matched to the table by column
// name; header columns the table lacks are added, and the existing rows get
// models.MissingValue in them.
func (t *Table) Append(header, row []string) error {
	if len(header) != len(row) {
		return fmt.Errorf("row has %d values for %d columns", len(row), len(header))
	}

	if t.header == nil {
		return t.create(header, row)
	}

	target := t.header
	for _, col := range header {
		if !slices.Contains(target, col) {
			target = append(slices.Clone(target), col)
		}
	}
	if len(target) != len(t.header) {
		if err := t.widen(target); err != nil {
			return err
		}
	}

	return t.appendRow(project(header, row, t.header))
}

func (t *Table) create(header, row []string) error {
	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output table: %w", err)
	}

	if err := writeAll(file, header, [][]string{row}); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output table: %w", err)
	}

	t.header = slices.Clone(header)
	t.rows = 1
	return nil
}

func (t *Table) appendRow(row []string) error {
	file, err := os.OpenFile(t.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output table for append: %w", err)
	}

	if err := writeAll(file, nil, [][]string{row}); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output table: %w", err)
	}

	t.rows++
	return nil
}

// widen rewrites the table under a wider header through a temporary file so
// an interruption leaves either the old or the new table in place.
func (t *Table) widen(target []string) error {
	slog.Info("Widening output table", "path", t.path, "from", len(t.header), "to", len(target))

	src, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("failed to open output table: %w", err)
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	src.Close()
	if err != nil {
		return fmt.Errorf("failed to read output table: %w", err)
	}

	var data [][]string
	if len(records) > 1 {
		data = records[1:]
	}

	widest := len(target)
	for _, rec := range data {
		widest = max(widest, len(rec))
	}
	if widest > len(target) {
		target = extendHeader(target, widest)
		slog.Warn("Naming columns of rows wider than the header", "path", t.path, "columns", target[len(t.header):])
	}

	rows := make([][]string, 0, len(data))
	for _, rec := range data {
		rows = append(rows, pad(rec, len(t.header), len(target)))
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary table: %w", err)
	}
	tempPath := tmp.Name()

	if err := writeAll(tmp, target, rows); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temporary table: %w", err)
	}

	if err := os.Rename(tempPath, t.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace output table: %w", err)
	}

	t.header = slices.Clone(target)
	return nil
}

func writeAll(file *os.File, header []string, rows [][]string) error {
	w := csv.NewWriter(file)
	if header != nil {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync table: %w", err)
	}
	return nil
}

// pad extends a row written under a header of width `from` to width `to`.
// Values a row already holds past its header are kept: older tables were
// appended to without rewriting the header.
func pad(row []string, from, to int) []string {
	out := make([]string, to)
	for i := range out {
		switch {
		case i < len(row):
			out[i] = row[i]
		case i < from:
			out[i] = ""
		default:
			out[i] = models.MissingValue
		}
	}
	return out
}

// numbered matches column names such as "Protagonist 2".
var numbered = regexp.MustCompile(`^(.+) (\d+)$`)

// extendHeader names columns up to width. When the header ends in a numbered
// group ("Protagonist 2", "Profession 2") the group is continued with the
// next numbers; otherwise columns are called "Column N". Names already in the
// header are skipped.
func extendHeader(header []string, width int) []string {
	out := slices.Clone(header)

	var group []string
	next := 0
	for size := len(out); size > 0; size-- {
		m := numbered.FindStringSubmatch(out[size-1])
		if m == nil || (len(group) > 0 && m[2] != strconv.Itoa(next)) {
			break
		}
		next, _ = strconv.Atoi(m[2])
		group = append([]string{m[1]}, group...)
	}

	for i := 0; len(out) < width; i++ {
		var name string
		if len(group) > 0 {
			name = fmt.Sprintf("%s %d", group[i%len(group)], next+1+i/len(group))
		} else {
			name = fmt.Sprintf("Column %d", i+1)
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// project orders row (named by header) by target, filling unknown columns.
func project(header, row, target []string) []string {
	byName := make(map[string]string, len(header))
	for i, col := range header {
		byName[col] = row[i]
	}
	out := make([]string, len(target))
	for i, col := range target {
		v, ok := byName[col]
		if !ok {
			v = models.MissingValue
		}
		out[i] = v
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
