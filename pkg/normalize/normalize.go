// Package normalize provides per-field coercions for card inventory data.
// Every function is total: malformed input yields a canonical empty value,
// never an error or panic, so a bad cell can never abort a run.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deburrer strips diacritics by canonical decomposition: decompose, drop
// combining marks, recompose.
var deburrer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var yearPattern = regexp.MustCompile(`(19|20)\d\d`)

// Text folds a free-text value for matching comparisons: diacritics stripped,
// lower-cased, "&" mapped to "and", runs of non-alphanumerics collapsed to a
// single space, trimmed.
func Text(s string) string {
	folded, _, err := transform.String(deburrer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "&", " and ")

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := false
	for _, r := range folded {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Year extracts the first plausible 4-digit year from a string. Season ranges
// like "2023-24" yield the leading year. Returns "" when no year is present.
func Year(s string) string {
	return yearPattern.FindString(s)
}

// Money parses a money value, tolerating currency symbols and thousands
// separators. The boolean reports whether a finite decimal was parsed;
// empty or invalid input returns (zero, false), which is distinct from an
// explicit zero amount.
func Money(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Quantity parses a non-negative integer quantity, defaulting to 1 when the
// value is blank or unparsable. Negative values are treated as unparsable.
func Quantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 1
	}
	return n
}

// Boolean canonicalizes a tri-state boolean token. Recognized true/false
// spellings map to "true"/"false"; anything else passes through trimmed and
// lower-cased so unknown vocabularies survive round trips.
func Boolean(s string) string {
	token := strings.ToLower(strings.TrimSpace(s))
	switch token {
	case "1", "true", "yes", "y", "t":
		return "true"
	case "0", "false", "no", "n", "f":
		return "false"
	}
	return token
}

// timeLayouts are tried in order; the first parse wins.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Time parses a timestamp in any of the accepted layouts, or as unix seconds.
func Time(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
