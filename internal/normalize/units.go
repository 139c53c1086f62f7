package normalize

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

// UnitConversionError reports a physical quantity whose declared unit is
// not recognized. The field becomes unknown; the record proceeds.
type UnitConversionError struct {
	Unit      string
	Dimension string
}

func (e *UnitConversionError) Error() string {
	return fmt.Sprintf("unrecognized %s unit %q", e.Dimension, e.Unit)
}

// Conversion factors to the base unit of each dimension:
// mass in grams, length in millimeters.
var (
	gramsPer = map[string]float64{
		"g":         1,
		"gram":      1,
		"grams":     1,
		"kg":        1000,
		"kilogram":  1000,
		"kilograms": 1000,
		"lb":        453.59237,
		"lbs":       453.59237,
		"pound":     453.59237,
		"pounds":    453.59237,
		"oz":        28.349523125,
		"ounce":     28.349523125,
		"ounces":    28.349523125,
	}
	millimetersPer = map[string]float64{
		"mm":          1,
		"millimeter":  1,
		"millimeters": 1,
		"cm":          10,
		"centimeter":  10,
		"centimeters": 10,
		"m":           1000,
		"meter":       1000,
		"meters":      1000,
		"in":          25.4,
		"inch":        25.4,
		"inches":      25.4,
		`"`:           25.4,
	}
)

// Grams converts a mass quantity to grams. A nil quantity is unknown, not
// an error.
func Grams(q *records.Quantity) (float64, error) {
	if q == nil {
		return records.Unknown, nil
	}
	factor, ok := gramsPer[canonicalUnit(q.Unit)]
	if !ok {
		return records.Unknown, &UnitConversionError{Unit: q.Unit, Dimension: "mass"}
	}
	return q.Value * factor, nil
}

// Millimeters converts a length quantity to millimeters. A nil quantity
// is unknown, not an error.
func Millimeters(q *records.Quantity) (float64, error) {
	if q == nil {
		return records.Unknown, nil
	}
	factor, ok := millimetersPer[canonicalUnit(q.Unit)]
	if !ok {
		return records.Unknown, &UnitConversionError{Unit: q.Unit, Dimension: "length"}
	}
	return q.Value * factor, nil
}

func canonicalUnit(u string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(u), ".")))
}
