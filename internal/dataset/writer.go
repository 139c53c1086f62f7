package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

// WriteCanonicalCSV writes merged records to a CSV file, one row per
// canonical record. Unknown numeric fields render as empty cells.
func WriteCanonicalCSV(path string, recs []records.CanonicalRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"isbn_13", "title", "authors", "publisher", "year", "page_count",
		"weight_grams", "height_mm", "width_mm", "thickness_mm",
		"confidence", "members",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range recs {
		row := []string{
			r.ISBN13,
			r.Title,
			strings.Join(r.Authors, "; "),
			r.Publisher,
			cellInt(r.Year),
			cellInt(r.PageCount),
			cellFloat(r.WeightGrams),
			cellFloat(r.HeightMM),
			cellFloat(r.WidthMM),
			cellFloat(r.ThicknessMM),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
			strings.Join(r.Members, "; "),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteJSONL writes raw records as JSON lines, the handoff format
// between fetch and resolve.
func WriteJSONL(path string, recs []records.RawRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return nil
}

func cellInt(v int) string {
	if v == records.Unknown {
		return ""
	}
	return strconv.Itoa(v)
}

func cellFloat(v float64) string {
	if v == records.Unknown {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
