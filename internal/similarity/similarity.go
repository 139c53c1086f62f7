package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

// Weights maps field names to their share of the record-level score. The
// total must be positive; it does not have to be exactly 1.0 because
// missing fields drop out of the denominator anyway.
type Weights map[string]float64

// DefaultWeights returns the documented default field weighting.
func DefaultWeights() Weights {
	return Weights{
		records.FieldTitle:     0.40,
		records.FieldAuthors:   0.35,
		records.FieldPublisher: 0.15,
		records.FieldYear:      0.10,
	}
}

// Validate rejects weight sets with negative entries or a non-positive
// total. This is the only configuration error that is fatal at
// construction time.
func (w Weights) Validate() error {
	total := 0.0
	for name, weight := range w {
		if weight < 0 {
			return fmt.Errorf("field weight for %q is negative", name)
		}
		total += weight
	}
	if total <= 0 {
		return fmt.Errorf("field weights sum to %v, want a positive total", total)
	}
	return nil
}

// Scorer computes field and record similarity in [0,1]. All scores are
// symmetric.
type Scorer struct {
	weights Weights
}

// NewScorer builds a scorer, validating the weights.
func NewScorer(w Weights) (*Scorer, error) {
	if w == nil {
		w = DefaultWeights()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// ScoreRecord is the weighted average of field scores over the fields
// known on both sides. Absence reduces the denominator weight rather than
// scoring zero: a record missing its page count merges with a complete
// one without penalty.
func (s *Scorer) ScoreRecord(a, b *records.NormalizedRecord) float64 {
	total := 0.0
	denom := 0.0
	for name, weight := range s.weights {
		score, known := s.ScoreField(name, a, b)
		if !known {
			continue
		}
		total += score * weight
		denom += weight
	}
	if denom == 0 {
		return 0
	}
	return total / denom
}

// ScoreField scores one field pair. The second return is false when the
// field is unknown on either side; unknown never participates in
// comparison.
func (s *Scorer) ScoreField(name string, a, b *records.NormalizedRecord) (float64, bool) {
	switch name {
	case records.FieldISBN:
		if a.ISBN13 == "" || b.ISBN13 == "" {
			return 0, false
		}
		if a.ISBN13 == b.ISBN13 {
			return 1, true
		}
		return 0, true
	case records.FieldTitle:
		return scoreText(a.Title, b.Title)
	case records.FieldPublisher:
		return scoreText(a.Publisher, b.Publisher)
	case records.FieldAuthors:
		if len(a.Authors) == 0 || len(b.Authors) == 0 {
			return 0, false
		}
		return scoreText(strings.Join(a.Authors, " "), strings.Join(b.Authors, " "))
	case records.FieldYear:
		return scoreYear(a.Year, b.Year)
	case records.FieldPages:
		return scoreQuantity(float64(a.PageCount), float64(b.PageCount))
	case records.FieldWeight:
		return scoreQuantity(a.WeightGrams, b.WeightGrams)
	case records.FieldHeight:
		return scoreQuantity(a.HeightMM, b.HeightMM)
	case records.FieldWidth:
		return scoreQuantity(a.WidthMM, b.WidthMM)
	case records.FieldThickness:
		return scoreQuantity(a.ThicknessMM, b.ThicknessMM)
	default:
		return 0, false
	}
}

// scoreText combines Levenshtein ratio with a token-set ratio so that
// word order and decorations ("(Penguin Classics)") cost little.
func scoreText(a, b string) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return 1, true
	}
	return math.Max(ratio(a, b), tokenSetRatio(a, b)), true
}

func scoreYear(a, b int) (float64, bool) {
	if a == records.Unknown || b == records.Unknown {
		return 0, false
	}
	switch {
	case a == b:
		return 1, true
	case a-b == 1 || b-a == 1:
		// Off-by-one years are usually printing vs copyright dates.
		return 0.5, true
	default:
		return 0, true
	}
}

// scoreQuantity is the tolerance-banded numeric comparison: within ±2% of
// the larger magnitude scores 1.0, decaying linearly to 0 at ±20%.
func scoreQuantity(a, b float64) (float64, bool) {
	if a == records.Unknown || b == records.Unknown {
		return 0, false
	}
	larger := math.Max(math.Abs(a), math.Abs(b))
	if larger == 0 {
		return 1, true
	}
	rel := math.Abs(a-b) / larger
	switch {
	case rel <= 0.02:
		return 1, true
	case rel >= 0.20:
		return 0, true
	default:
		return 1 - (rel-0.02)/0.18, true
	}
}

// ratio converts Levenshtein distance to a similarity in [0,1].
func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// tokenSetRatio compares the sorted token intersection against each
// side's remainder, taking the best pairing. Decorative extra tokens on
// one side barely lower the score.
func tokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	var inter, onlyA, onlyB []string
	for tok := range ta {
		if tb[tok] {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(inter, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(base, withA)
	if r := ratio(base, withB); r > best {
		best = r
	}
	if r := ratio(withA, withB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// levenshtein calculates the edit distance between two strings.
func levenshtein(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	rows := len(s1) + 1
	cols := len(s2) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
	}

	for i := 0; i < rows; i++ {
		matrix[i][0] = i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			matrix[i][j] = min(deletion, min(insertion, substitution))
		}
	}

	return matrix[rows-1][cols-1]
}
