package normalize

import (
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/reconciler/internal/isbn"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

var (
	// Intra-word hyphens are semantically meaningful (compound surnames,
	// hyphenated titles) and survive normalization. They are protected
	// with a placeholder before punctuation stripping.
	wordHyphenRe = regexp.MustCompile(`(\w)-(\w)`)
	// The strip class must not match the hyphen placeholder, or the
	// protected hyphens are lost before the restore step.
	punctuationRe = regexp.MustCompile(`[^\w\s\x00]`)

	authorSplitRe = regexp.MustCompile(`\s*(?:;|&|\band\b)\s*`)
)

const hyphenMark = "\x00"

// Text canonicalizes a free-text field: lowercase, punctuation stripped
// except intra-word hyphens, whitespace collapsed. Text is deterministic
// and idempotent. An empty result means the field is unknown.
func Text(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, hyphenMark, " ")
	for wordHyphenRe.MatchString(s) {
		s = wordHyphenRe.ReplaceAllString(s, "$1"+hyphenMark+"$2")
	}
	s = punctuationRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, hyphenMark, "-")
	return strings.Join(strings.Fields(s), " ")
}

// Authors canonicalizes an author list. Entries holding several names are
// split on common separators, and each name is reordered to
// "surname, given" when the order is detectable. Names already carrying a
// comma are taken as surname-first and left in that order.
func Authors(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, name := range authorSplitRe.Split(entry, -1) {
			if n := Author(name); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

// Author canonicalizes a single personal name.
func Author(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		surname := Text(name[:i])
		given := Text(name[i+1:])
		if surname == "" {
			return given
		}
		if given == "" {
			return surname
		}
		return surname + ", " + given
	}
	t := Text(name)
	parts := strings.Fields(t)
	if len(parts) < 2 {
		return t
	}
	surname := parts[len(parts)-1]
	given := strings.Join(parts[:len(parts)-1], " ")
	return surname + ", " + given
}

// Record derives the canonical twin of a raw record. Field-level failures
// (unrecognized unit, malformed ISBN) leave that field unknown and are
// returned as warnings; they never abort the record.
func Record(r records.RawRecord) (records.NormalizedRecord, []error) {
	var warnings []error

	n := records.NormalizedRecord{
		ID:          r.ID,
		Source:      r.Source,
		Title:       Text(r.Title),
		Authors:     Authors(r.Authors),
		Publisher:   Text(r.Publisher),
		Year:        records.Unknown,
		PageCount:   records.Unknown,
		WeightGrams: records.Unknown,
		HeightMM:    records.Unknown,
		WidthMM:     records.Unknown,
		ThicknessMM: records.Unknown,
	}

	if r.ISBN != "" {
		family, err := isbn.Family(r.ISBN)
		if err != nil {
			warnings = append(warnings, err)
		} else {
			n.ISBN13 = family
			n.Family = family
		}
	}

	if r.Year > 0 {
		n.Year = r.Year
	}
	if r.PageCount > 0 {
		n.PageCount = r.PageCount
	}

	if g, err := Grams(r.Weight); err != nil {
		warnings = append(warnings, err)
	} else {
		n.WeightGrams = g
	}
	if mm, err := Millimeters(r.Height); err != nil {
		warnings = append(warnings, err)
	} else {
		n.HeightMM = mm
	}
	if mm, err := Millimeters(r.Width); err != nil {
		warnings = append(warnings, err)
	} else {
		n.WidthMM = mm
	}
	if mm, err := Millimeters(r.Thickness); err != nil {
		warnings = append(warnings, err)
	} else {
		n.ThicknessMM = mm
	}

	return n, warnings
}
