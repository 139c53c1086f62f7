package isbn

import (
	"fmt"
	"strings"
)

// MalformedISBNError reports an ISBN that failed length, digit, or
// checksum validation. Records carrying one are excluded from clustering
// but the batch continues.
type MalformedISBNError struct {
	ISBN   string
	Reason string
}

func (e *MalformedISBNError) Error() string {
	return fmt.Sprintf("malformed ISBN %q: %s", e.ISBN, e.Reason)
}

// Normalize strips hyphens and spaces and uppercases a trailing x check
// character.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToUpper(s)
}

// Family returns the canonical ISBN-13 family key for an ISBN in either
// 10 or 13 digit form. ISBN-10s map to their 978-prefixed equivalent, so
// the two forms of one edition share a key.
func Family(s string) (string, error) {
	n := Normalize(s)
	switch len(n) {
	case 13:
		if err := validate13(n); err != nil {
			return "", err
		}
		return n, nil
	case 10:
		if err := validate10(n); err != nil {
			return "", err
		}
		return To13(n), nil
	case 0:
		return "", &MalformedISBNError{ISBN: s, Reason: "empty"}
	default:
		return "", &MalformedISBNError{ISBN: s, Reason: fmt.Sprintf("length %d, want 10 or 13", len(n))}
	}
}

// To13 converts a valid ISBN-10 to its ISBN-13 form by prefixing 978 and
// recomputing the check digit. The input must already be normalized and
// valid.
func To13(isbn10 string) string {
	body := "978" + isbn10[:9]
	return body + string(checkDigit13(body))
}

// To10 converts a 978-prefixed ISBN-13 back to its ISBN-10 form. 979
// ISBNs have no ISBN-10 equivalent and return "".
func To10(isbn13 string) string {
	if len(isbn13) != 13 || !strings.HasPrefix(isbn13, "978") {
		return ""
	}
	body := isbn13[3:12]
	return body + string(checkDigit10(body))
}

func validate13(n string) error {
	for i := 0; i < len(n); i++ {
		if n[i] < '0' || n[i] > '9' {
			return &MalformedISBNError{ISBN: n, Reason: "non-digit character"}
		}
	}
	if n[:3] != "978" && n[:3] != "979" {
		return &MalformedISBNError{ISBN: n, Reason: "prefix must be 978 or 979"}
	}
	if checkDigit13(n[:12]) != n[12] {
		return &MalformedISBNError{ISBN: n, Reason: "check digit mismatch"}
	}
	return nil
}

func validate10(n string) error {
	for i := 0; i < 9; i++ {
		if n[i] < '0' || n[i] > '9' {
			return &MalformedISBNError{ISBN: n, Reason: "non-digit character"}
		}
	}
	last := n[9]
	if (last < '0' || last > '9') && last != 'X' {
		return &MalformedISBNError{ISBN: n, Reason: "invalid check character"}
	}
	if checkDigit10(n[:9]) != last {
		return &MalformedISBNError{ISBN: n, Reason: "check digit mismatch"}
	}
	return nil
}

// checkDigit13 computes the EAN-13 check digit for a 12-digit body:
// alternating weights 1 and 3, complement mod 10.
func checkDigit13(body string) byte {
	c := 0
	for i := 0; i < len(body); i++ {
		d := int(body[i] - '0')
		if i%2 == 0 {
			c += d
		} else {
			c += d * 3
		}
	}
	r := (10 - c%10) % 10
	return byte('0' + r)
}

// checkDigit10 computes the ISBN-10 check character for a 9-digit body,
// which may be 'X'.
func checkDigit10(body string) byte {
	c := 0
	for i := 0; i < 9; i++ {
		c += (10 - i) * int(body[i]-'0')
	}
	r := (11 - c%11) % 11
	if r == 10 {
		return 'X'
	}
	return byte('0' + r)
}
