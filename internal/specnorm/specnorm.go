// Package specnorm canonicalizes free-text cable attributes into a fixed vocabulary.
package specnorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	Armored   = "Armored"
	Unarmored = "Unarmored"
	XLPE      = "XLPE"
	PVC       = "PVC"
	Aluminum  = "Aluminum"
	Copper    = "Copper"
)

var vocabulary = map[string]string{
	"armoured":  Armored,
	"armored":   Armored,
	"xlpe":      XLPE,
	"pvc":       PVC,
	"aluminium": Aluminum,
	"aluminum":  Aluminum,
	"copper":    Copper,
}

var (
	voltageRe = regexp.MustCompile(`(?i)(\d{1,3})\s*k\s*V`)
	numberRe  = regexp.MustCompile(`\d+`)
)

// fold strips diacritics and case so "Alumínium" and "ALUMINIUM" meet the same key.
func fold(v string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, strings.TrimSpace(v))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

// Text maps a known spelling to its canonical form. Unknown values are returned trimmed.
func Text(v string) string {
	if canonical, ok := vocabulary[fold(v)]; ok {
		return canonical
	}
	return strings.TrimSpace(v)
}

// Armoring reduces any non-empty value to Armored or Unarmored.
func Armoring(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	if Text(v) == Armored {
		return Armored
	}
	return Unarmored
}

// Voltage collapses "11kV", "11 KV" or "11 k V" into "11 kV". Other values pass through.
func Voltage(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if m := voltageRe.FindStringSubmatch(v); m != nil {
		return fmt.Sprintf("%s kV", m[1])
	}
	return v
}

// VoltageNumber returns the first integer in a voltage string.
func VoltageNumber(v string) (int, bool) {
	m := numberRe.FindString(v)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// VoltageWithin reports whether two voltage strings are within tolerance of each
// other. Without digits on either side it falls back to plain equality.
func VoltageWithin(a, b string, tolerance int) bool {
	na, okA := VoltageNumber(a)
	nb, okB := VoltageNumber(b)
	if !okA || !okB {
		return a == b
	}
	d := na - nb
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
