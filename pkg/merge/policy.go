// Package merge combines matched card records field by field. Merging is
// pure: inputs are never mutated, and losing values in a field collision are
// retained under norm_<field> shadow keys so no information is silently
// dropped.
package merge

import (
	"fmt"
	"strings"
)

// ValueStrategy selects how the commercial fields value and purchase_price
// are combined when both records carry one.
type ValueStrategy string

// Value strategies.
const (
	// KeepOld preserves the authoritative record's value (default).
	KeepOld ValueStrategy = "keep_old"
	// Max keeps the larger value.
	Max ValueStrategy = "max"
	// Min keeps the smaller value.
	Min ValueStrategy = "min"
	// Newest keeps the value from whichever record has the more recent
	// timestamp.
	Newest ValueStrategy = "newest"
)

// ParseValueStrategy validates a strategy name from configuration.
func ParseValueStrategy(s string) (ValueStrategy, error) {
	switch v := ValueStrategy(strings.ToLower(strings.TrimSpace(s))); v {
	case KeepOld, Max, Min, Newest:
		return v, nil
	case "":
		return KeepOld, nil
	default:
		return "", fmt.Errorf("unknown merge-values strategy %q (want keep_old, max, min or newest)", s)
	}
}

// Policy controls merge behavior.
type Policy struct {
	// FillBlanks lets a blank field on the precedence-winning record be
	// filled from the other record. Off by default: preserve-old is pure
	// unless explicitly requested.
	FillBlanks bool `yaml:"fill_blanks"`

	// Values selects the aggregation strategy for value/purchase_price.
	Values ValueStrategy `yaml:"values"`

	// NoteSeparator joins differing notes fields.
	NoteSeparator string `yaml:"note_separator"`
}

// DefaultPolicy returns the default merge policy.
func DefaultPolicy() Policy {
	return Policy{
		FillBlanks:    false,
		Values:        KeepOld,
		NoteSeparator: " | ",
	}
}
