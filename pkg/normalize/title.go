package normalize

import (
	"regexp"
	"strings"
)

// Title mining is a best-effort fallback for rows whose structured columns
// are blank. The extractions below are approximate: they have known
// false-negative and false-positive rates and are never preferred over a
// populated structured column.

var (
	// "#221", "# RC-7", "#7b"
	cardNumberPattern = regexp.MustCompile(`(?i)#\s*([a-z]{0,4}-?\d+[a-z]?)`)

	// "no. 221" / "no 221" variants seen in spreadsheet exports
	cardNumberAltPattern = regexp.MustCompile(`(?i)\bno\.?\s+(\d+[a-z]?)\b`)

	// leading "2024" or "2023-24" / "2023/2024" season tokens
	leadingSeasonPattern = regexp.MustCompile(`^\s*(19|20)\d\d(\s*[-/]\s*\d{2,4})?\s+`)
)

// CardNumberFromTitle extracts a card number from a free-text listing title,
// e.g. "2024 Topps #221 Messi" yields "221". Returns "" when nothing matches.
func CardNumberFromTitle(title string) string {
	if m := cardNumberPattern.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	if m := cardNumberAltPattern.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

// SetFromTitle approximates the set name from a listing title by stripping
// the leading year/season token and truncating at the card number marker.
// "2023-24 Panini Prizm #221 Haaland" yields "Panini Prizm".
func SetFromTitle(title string) string {
	s := leadingSeasonPattern.ReplaceAllString(title, "")
	if idx := strings.Index(s, "#"); idx >= 0 {
		s = s[:idx]
	} else if m := cardNumberAltPattern.FindStringIndex(s); m != nil {
		s = s[:m[0]]
	}
	return strings.TrimSpace(s)
}
