package records

import (
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Quantity
	}{
		{
			name:  "value and unit",
			input: "9.25 Inches",
			want:  &Quantity{Value: 9.25, Unit: "Inches"},
		},
		{
			name:  "multi-word unit",
			input: "1.2 fluid ounces",
			want:  &Quantity{Value: 1.2, Unit: "fluid ounces"},
		},
		{
			name:  "leading whitespace",
			input: "  340 g",
			want:  &Quantity{Value: 340, Unit: "g"},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "no unit",
			input: "340",
			want:  nil,
		},
		{
			name:  "no leading number",
			input: "about 340 g",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuantity(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseQuantity(%q) = %+v, want nil", tt.input, got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("ParseQuantity(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuantityString(t *testing.T) {
	q := &Quantity{Value: 9.25, Unit: "Inches"}
	if got := q.String(); got != "9.25 Inches" {
		t.Errorf("String() = %q", got)
	}
	var nilQ *Quantity
	if got := nilQ.String(); got != "" {
		t.Errorf("nil String() = %q, want empty", got)
	}
}

func TestCompleteness(t *testing.T) {
	empty := NormalizedRecord{
		Year: Unknown, PageCount: Unknown,
		WeightGrams: Unknown, HeightMM: Unknown,
		WidthMM: Unknown, ThicknessMM: Unknown,
	}
	if got := empty.Completeness(); got != 0 {
		t.Errorf("empty Completeness() = %d, want 0", got)
	}

	partial := empty
	partial.ISBN13 = "9780140268867"
	partial.Title = "the odyssey"
	partial.Year = 1997
	if got := partial.Completeness(); got != 3 {
		t.Errorf("partial Completeness() = %d, want 3", got)
	}

	full := NormalizedRecord{
		ISBN13: "9780140268867", Title: "the odyssey",
		Authors: []string{"homer"}, Publisher: "penguin",
		Year: 1997, PageCount: 541,
		WeightGrams: 340, HeightMM: 198, WidthMM: 129, ThicknessMM: 28,
	}
	if got := full.Completeness(); got != 10 {
		t.Errorf("full Completeness() = %d, want 10", got)
	}
}
