package merge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/similarity"
)

// ErrEmptyCluster indicates Merge was invoked with zero records. That is
// an invariant violation in the matcher, not a user-facing condition.
var ErrEmptyCluster = errors.New("merge: cluster has no records")

// Merger collapses a matched cluster into one canonical record.
type Merger struct {
	scorer *similarity.Scorer
	// trust ranks sources by per-source priority; higher wins a field.
	trust map[string]int
}

// NewMerger builds a merger. Sources absent from trust rank at 0.
func NewMerger(scorer *similarity.Scorer, trust map[string]int) *Merger {
	return &Merger{scorer: scorer, trust: trust}
}

// Merge resolves a cluster to a canonical record. Per field, the value
// comes from the member with the highest source trust; ties break by
// highest similarity to the rest of the cluster, then by most complete
// record, then by record ID for determinism. Confidence is the cluster's
// weakest pairwise link. A singleton cluster merges to a lossless copy of
// its member with confidence 1.0.
func (m *Merger) Merge(cl records.Cluster, members []records.NormalizedRecord) (records.CanonicalRecord, error) {
	if len(members) == 0 {
		return records.CanonicalRecord{}, ErrEmptyCluster
	}

	// Precedence order shared by every field: trust, centroid
	// similarity, completeness, ID.
	ranked := make([]*records.NormalizedRecord, len(members))
	for i := range members {
		ranked[i] = &members[i]
	}
	centroid := m.centroidSimilarity(members)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := m.trust[ranked[i].Source], m.trust[ranked[j].Source]
		if ti != tj {
			return ti > tj
		}
		if centroid[ranked[i].ID] != centroid[ranked[j].ID] {
			return centroid[ranked[i].ID] > centroid[ranked[j].ID]
		}
		ci, cj := ranked[i].Completeness(), ranked[j].Completeness()
		if ci != cj {
			return ci > cj
		}
		return ranked[i].ID < ranked[j].ID
	})

	out := records.CanonicalRecord{
		ID:          uuid.NewString(),
		Family:      cl.Family,
		Year:        records.Unknown,
		PageCount:   records.Unknown,
		WeightGrams: records.Unknown,
		HeightMM:    records.Unknown,
		WidthMM:     records.Unknown,
		ThicknessMM: records.Unknown,
		Provenance:  make(map[string]string),
		Confidence:  cl.Confidence,
		Members:     append([]string(nil), cl.Members...),
		CreatedAt:   time.Now().UTC(),
	}
	if len(members) == 1 {
		out.Confidence = 1.0
	}

	for _, r := range ranked {
		if out.ISBN13 == "" && r.ISBN13 != "" {
			out.ISBN13 = r.ISBN13
			out.Provenance[records.FieldISBN] = r.ID
		}
		if out.Title == "" && r.Title != "" {
			out.Title = r.Title
			out.Provenance[records.FieldTitle] = r.ID
		}
		if len(out.Authors) == 0 && len(r.Authors) > 0 {
			out.Authors = append([]string(nil), r.Authors...)
			out.Provenance[records.FieldAuthors] = r.ID
		}
		if out.Publisher == "" && r.Publisher != "" {
			out.Publisher = r.Publisher
			out.Provenance[records.FieldPublisher] = r.ID
		}
		if out.Year == records.Unknown && r.Year != records.Unknown {
			out.Year = r.Year
			out.Provenance[records.FieldYear] = r.ID
		}
		if out.PageCount == records.Unknown && r.PageCount != records.Unknown {
			out.PageCount = r.PageCount
			out.Provenance[records.FieldPages] = r.ID
		}
		if out.WeightGrams == records.Unknown && r.WeightGrams != records.Unknown {
			out.WeightGrams = r.WeightGrams
			out.Provenance[records.FieldWeight] = r.ID
		}
		if out.HeightMM == records.Unknown && r.HeightMM != records.Unknown {
			out.HeightMM = r.HeightMM
			out.Provenance[records.FieldHeight] = r.ID
		}
		if out.WidthMM == records.Unknown && r.WidthMM != records.Unknown {
			out.WidthMM = r.WidthMM
			out.Provenance[records.FieldWidth] = r.ID
		}
		if out.ThicknessMM == records.Unknown && r.ThicknessMM != records.Unknown {
			out.ThicknessMM = r.ThicknessMM
			out.Provenance[records.FieldThickness] = r.ID
		}
	}

	return out, nil
}

// centroidSimilarity maps each member ID to its average similarity with
// the other members, the choose-the-value-nearest-its-peers rule. A
// singleton maps to 1.0.
func (m *Merger) centroidSimilarity(members []records.NormalizedRecord) map[string]float64 {
	out := make(map[string]float64, len(members))
	if len(members) == 1 {
		out[members[0].ID] = 1.0
		return out
	}
	for i := range members {
		total := 0.0
		for j := range members {
			if i == j {
				continue
			}
			total += m.scorer.ScoreRecord(&members[i], &members[j])
		}
		out[members[i].ID] = total / float64(len(members)-1)
	}
	return out
}

// Describe renders a short human-readable provenance summary, used in
// reports.
func Describe(c records.CanonicalRecord) string {
	fields := make([]string, 0, len(c.Provenance))
	for f := range c.Provenance {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	s := ""
	for _, f := range fields {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("%s<-%s", f, c.Provenance[f])
	}
	return s
}
