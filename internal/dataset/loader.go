package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/parquet-go/parquet-go"
)

// Loader reads raw record batches from CSV, JSONL, or Parquet files.
type Loader struct {
	path string
}

// NewLoader creates a loader for one batch file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load loads all records, detecting the format from the file extension.
func (l *Loader) Load() ([]records.RawRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.path))
	switch ext {
	case ".csv":
		return l.loadCSV()
	case ".jsonl", ".json":
		return l.loadJSONL()
	case ".parquet":
		return l.loadParquet()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .jsonl, .parquet)", ext)
	}
}

// CSV column order, matching the product export layout the tool has
// always consumed.
var csvHeader = []string{
	"id", "source", "product_isbn", "product_title", "authors",
	"publisher", "year", "page_count", "product_weight",
	"product_height", "product_width", "product_thickness",
}

func (l *Loader) loadCSV() ([]records.RawRecord, error) {
	slog.Debug("Opening CSV file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []records.RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", line, err)
		}

		rec := records.RawRecord{
			ID:        cell(row, "id"),
			Source:    cell(row, "source"),
			ISBN:      cell(row, "product_isbn"),
			Title:     cell(row, "product_title"),
			Publisher: cell(row, "publisher"),
			Weight:    records.ParseQuantity(cell(row, "product_weight")),
			Height:    records.ParseQuantity(cell(row, "product_height")),
			Width:     records.ParseQuantity(cell(row, "product_width")),
			Thickness: records.ParseQuantity(cell(row, "product_thickness")),
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.Source == "" {
			rec.Source = "csv"
		}
		if authors := cell(row, "authors"); authors != "" {
			for _, a := range strings.Split(authors, ";") {
				if a = strings.TrimSpace(a); a != "" {
					rec.Authors = append(rec.Authors, a)
				}
			}
		}
		rec.Year, _ = strconv.Atoi(cell(row, "year"))
		rec.PageCount, _ = strconv.Atoi(cell(row, "page_count"))

		out = append(out, rec)
	}

	slog.Debug("Finished reading CSV file", "total_records", len(out))
	return out, nil
}

func (l *Loader) loadJSONL() ([]records.RawRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	var out []records.RawRecord
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec records.RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading batch: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(out), "total_lines", lineNum)
	return out, nil
}

func (l *Loader) loadParquet() ([]records.RawRecord, error) {
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

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[records.RawRecord](pf)
	defer reader.Close()

	var out []records.RawRecord
	rows := make([]records.RawRecord, 128) // Read in batches

	for {
		n, err := reader.Read(rows)
		if n > 0 {
			for i := 0; i < n; i++ {
				rec := rows[i]
				if rec.ID == "" {
					rec.ID = uuid.NewString()
				}
				out = append(out, rec)
			}
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(out))
	return out, nil
}
