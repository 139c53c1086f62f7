package records

import (
	"strconv"
	"strings"
	"time"
)

// Field names used for similarity weights, provenance, and reporting.
const (
	FieldISBN      = "isbn"
	FieldTitle     = "title"
	FieldAuthors   = "authors"
	FieldPublisher = "publisher"
	FieldYear      = "year"
	FieldPages     = "pages"
	FieldWeight    = "weight"
	FieldHeight    = "height"
	FieldWidth     = "width"
	FieldThickness = "thickness"
)

// Unknown marks a numeric field with no usable value. String fields use ""
// and slices use nil. Scoring treats unknown as absent, never as a mismatch.
const Unknown = -1

// Quantity is a physical measurement as reported by a source,
// e.g. {1.2, "lbs"} or {198, "mm"}.
type Quantity struct {
	Value float64 `json:"value" parquet:"value"`
	Unit  string  `json:"unit" parquet:"unit"`
}

// ParseQuantity parses a display string like "9.25 Inches" or
// "1.2 pounds" into a quantity. Returns nil when the string does not
// lead with a number; sources report missing measurements that way.
func ParseQuantity(s string) *Quantity {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 {
		return nil
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	return &Quantity{Value: value, Unit: strings.Join(fields[1:], " ")}
}

// String renders a quantity the way sources report them.
func (q *Quantity) String() string {
	if q == nil {
		return ""
	}
	return strconv.FormatFloat(q.Value, 'f', -1, 64) + " " + q.Unit
}

// RawRecord is one source's metadata for an ISBN, exactly as fetched.
// Records from different providers share this shape and are told apart
// by Source; there are no per-provider types.
type RawRecord struct {
	ID        string    `json:"id" parquet:"id"`
	Source    string    `json:"source" parquet:"source"`
	ISBN      string    `json:"product_isbn" parquet:"product_isbn"`
	Title     string    `json:"product_title" parquet:"product_title"`
	Authors   []string  `json:"authors" parquet:"authors,list"`
	Publisher string    `json:"publisher" parquet:"publisher,optional"`
	Year      int       `json:"year" parquet:"year,optional"`
	PageCount int       `json:"page_count" parquet:"page_count,optional"`
	Weight    *Quantity `json:"product_weight,omitempty" parquet:"product_weight,optional"`
	Height    *Quantity `json:"product_height,omitempty" parquet:"product_height,optional"`
	Width     *Quantity `json:"product_width,omitempty" parquet:"product_width,optional"`
	Thickness *Quantity `json:"product_thickness,omitempty" parquet:"product_thickness,optional"`

	// CoverURL is presentation metadata from sources that publish cover
	// images. It never participates in similarity or merging.
	CoverURL string `json:"cover_url,omitempty" parquet:"cover_url,optional"`
}

// NormalizedRecord is the canonical-form twin of one RawRecord. Text is
// lowercased and stripped of noise punctuation, authors are in
// "surname, given" order, masses are grams and lengths millimeters.
// Unknown fields hold "" (strings), nil (slices), or Unknown (numbers).
type NormalizedRecord struct {
	ID     string
	Source string

	// ISBN13 is the canonical 13-digit form, "" when the raw ISBN
	// failed validation. Family equals ISBN13 for valid records and
	// doubles as the clustering key.
	ISBN13 string
	Family string

	Title     string
	Authors   []string
	Publisher string
	Year      int
	PageCount int

	WeightGrams float64
	HeightMM    float64
	WidthMM     float64
	ThicknessMM float64
}

// Completeness counts the known fields, used as the final merge tie-break.
func (n *NormalizedRecord) Completeness() int {
	c := 0
	if n.ISBN13 != "" {
		c++
	}
	if n.Title != "" {
		c++
	}
	if len(n.Authors) > 0 {
		c++
	}
	if n.Publisher != "" {
		c++
	}
	if n.Year != Unknown {
		c++
	}
	if n.PageCount != Unknown {
		c++
	}
	if n.WeightGrams != Unknown {
		c++
	}
	if n.HeightMM != Unknown {
		c++
	}
	if n.WidthMM != Unknown {
		c++
	}
	if n.ThicknessMM != Unknown {
		c++
	}
	return c
}

// Cluster is a set of record IDs judged to describe one work or edition.
// Confidence is the minimum pairwise similarity among members, 1.0 for
// singletons.
type Cluster struct {
	Family     string   `json:"family" yaml:"family"`
	Members    []string `json:"members" yaml:"members"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
}

// CanonicalRecord is the single merged record for one cluster. Provenance
// maps each populated field name to the ID of the raw record that supplied
// it. Canonical records are created once at merge time and never mutated;
// a new resolution pass produces new ones.
type CanonicalRecord struct {
	ID     string `json:"id" yaml:"id"`
	Family string `json:"family" yaml:"family"`

	ISBN13      string   `json:"isbn_13" yaml:"isbn_13"`
	Title       string   `json:"title" yaml:"title"`
	Authors     []string `json:"authors" yaml:"authors"`
	Publisher   string   `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Year        int      `json:"year" yaml:"year"`
	PageCount   int      `json:"page_count" yaml:"page_count"`
	WeightGrams float64  `json:"weight_grams" yaml:"weight_grams"`
	HeightMM    float64  `json:"height_mm" yaml:"height_mm"`
	WidthMM     float64  `json:"width_mm" yaml:"width_mm"`
	ThicknessMM float64  `json:"thickness_mm" yaml:"thickness_mm"`

	Provenance map[string]string `json:"provenance" yaml:"provenance"`
	Confidence float64           `json:"confidence" yaml:"confidence"`
	Members    []string          `json:"members" yaml:"members"`
	CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
}
