package merge

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/similarity"
)

func newTestMerger(t *testing.T, trust map[string]int) *Merger {
	t.Helper()
	scorer, err := similarity.NewScorer(nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewMerger(scorer, trust)
}

func TestMergeEmptyCluster(t *testing.T) {
	m := newTestMerger(t, nil)
	_, err := m.Merge(records.Cluster{}, nil)
	if !errors.Is(err, ErrEmptyCluster) {
		t.Errorf("Merge() error = %v, want ErrEmptyCluster", err)
	}
}

func TestMergeSingletonIsLossless(t *testing.T) {
	m := newTestMerger(t, nil)
	member := records.NormalizedRecord{
		ID: "a", Source: "gobo",
		ISBN13: "9780140268867", Family: "9780140268867",
		Title:     "the odyssey",
		Authors:   []string{"homer", "wilson, emily"},
		Publisher: "penguin",
		Year:      1997, PageCount: 541,
		WeightGrams: 340, HeightMM: 198,
		WidthMM: records.Unknown, ThicknessMM: records.Unknown,
	}
	cl := records.Cluster{
		Family:     "9780140268867",
		Members:    []string{"a"},
		Confidence: 0.73, // merger overrides for singletons
	}

	got, err := m.Merge(cl, []records.NormalizedRecord{member})
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != 1.0 {
		t.Errorf("singleton confidence = %v, want 1.0", got.Confidence)
	}
	if got.ID == "" || got.ID == member.ID {
		t.Errorf("canonical ID = %q, want a fresh identifier", got.ID)
	}
	if got.ISBN13 != member.ISBN13 || got.Title != member.Title ||
		got.Publisher != member.Publisher || got.Year != member.Year ||
		got.PageCount != member.PageCount || got.WeightGrams != member.WeightGrams ||
		got.HeightMM != member.HeightMM {
		t.Errorf("singleton merge lost data: %+v", got)
	}
	if !reflect.DeepEqual(got.Authors, member.Authors) {
		t.Errorf("Authors = %v, want %v", got.Authors, member.Authors)
	}
	if got.WidthMM != records.Unknown {
		t.Errorf("WidthMM = %v, want Unknown", got.WidthMM)
	}
	for field, id := range got.Provenance {
		if id != "a" {
			t.Errorf("provenance for %s = %s, want a", field, id)
		}
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestMergeTrustWinsField(t *testing.T) {
	trust := map[string]int{"isbndb": 2, "gobo": 1}
	m := newTestMerger(t, trust)

	members := []records.NormalizedRecord{
		{
			ID: "a", Source: "gobo",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey", Publisher: "penguin",
			Year: 1996, PageCount: records.Unknown,
			WeightGrams: records.Unknown, HeightMM: 198,
			WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
		{
			ID: "b", Source: "isbndb",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey a new translation", Publisher: "penguin books",
			Year: 1997, PageCount: 541,
			WeightGrams: records.Unknown, HeightMM: records.Unknown,
			WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
	}
	cl := records.Cluster{
		Family:     "9780140268867",
		Members:    []string{"a", "b"},
		Confidence: 0.9,
	}

	got, err := m.Merge(cl, members)
	if err != nil {
		t.Fatal(err)
	}
	// The trusted source supplies every field it has.
	if got.Title != "the odyssey a new translation" {
		t.Errorf("Title = %q, want the trusted source's title", got.Title)
	}
	if got.Provenance[records.FieldTitle] != "b" {
		t.Errorf("title provenance = %s, want b", got.Provenance[records.FieldTitle])
	}
	if got.Year != 1997 {
		t.Errorf("Year = %d, want 1997", got.Year)
	}
	// Fields only the untrusted source has still fill in.
	if got.HeightMM != 198 {
		t.Errorf("HeightMM = %v, want 198", got.HeightMM)
	}
	if got.Provenance[records.FieldHeight] != "a" {
		t.Errorf("height provenance = %s, want a", got.Provenance[records.FieldHeight])
	}
	if got.PageCount != 541 {
		t.Errorf("PageCount = %d, want 541", got.PageCount)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want the cluster's weakest link", got.Confidence)
	}
}

func TestMergeCompletenessBreaksTies(t *testing.T) {
	// Equal trust, near-identical records: the more complete one leads.
	m := newTestMerger(t, nil)

	members := []records.NormalizedRecord{
		{
			ID: "sparse", Source: "ol",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey",
			Year:  records.Unknown, PageCount: records.Unknown,
			WeightGrams: records.Unknown, HeightMM: records.Unknown,
			WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
		{
			ID: "full", Source: "gobo",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey", Publisher: "penguin",
			Year: 1996, PageCount: 541,
			WeightGrams: 340, HeightMM: records.Unknown,
			WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
	}
	cl := records.Cluster{
		Family:     "9780140268867",
		Members:    []string{"full", "sparse"},
		Confidence: 1.0,
	}

	got, err := m.Merge(cl, members)
	if err != nil {
		t.Fatal(err)
	}
	if got.Provenance[records.FieldTitle] != "full" {
		t.Errorf("title provenance = %s, want the more complete record", got.Provenance[records.FieldTitle])
	}
}

func TestMergeIDBreaksFinalTie(t *testing.T) {
	m := newTestMerger(t, nil)

	members := []records.NormalizedRecord{
		{
			ID: "b", Source: "x",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey", Year: 1996,
			PageCount: records.Unknown, WeightGrams: records.Unknown,
			HeightMM: records.Unknown, WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
		{
			ID: "a", Source: "y",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey", Year: 1996,
			PageCount: records.Unknown, WeightGrams: records.Unknown,
			HeightMM: records.Unknown, WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
	}
	cl := records.Cluster{
		Family:     "9780140268867",
		Members:    []string{"a", "b"},
		Confidence: 1.0,
	}

	got, err := m.Merge(cl, members)
	if err != nil {
		t.Fatal(err)
	}
	if got.Provenance[records.FieldTitle] != "a" {
		t.Errorf("title provenance = %s, want the lexically first ID", got.Provenance[records.FieldTitle])
	}
}

func TestMergeProvenanceCoversPopulatedFields(t *testing.T) {
	m := newTestMerger(t, nil)
	members := []records.NormalizedRecord{
		{
			ID: "a", Source: "gobo",
			ISBN13: "9780140268867", Family: "9780140268867",
			Title: "the odyssey", Authors: []string{"homer"},
			Year: 1996, PageCount: records.Unknown,
			WeightGrams: records.Unknown, HeightMM: records.Unknown,
			WidthMM: records.Unknown, ThicknessMM: records.Unknown,
		},
	}
	cl := records.Cluster{Family: "9780140268867", Members: []string{"a"}, Confidence: 1.0}

	got, err := m.Merge(cl, members)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		records.FieldISBN:    "a",
		records.FieldTitle:   "a",
		records.FieldAuthors: "a",
		records.FieldYear:    "a",
	}
	if !reflect.DeepEqual(got.Provenance, want) {
		t.Errorf("Provenance = %v, want %v", got.Provenance, want)
	}
}

func TestDescribe(t *testing.T) {
	c := records.CanonicalRecord{
		Provenance: map[string]string{
			records.FieldTitle: "a",
			records.FieldYear:  "b",
		},
	}
	want := "title<-a, year<-b"
	if got := Describe(c); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
