// Package identity derives matching keys for canonical card records. The
// primary key joins candidate matches across datasets; the strict duplicate
// key additionally folds in variant and physical-state fields and identifies
// literal duplicate inventory lines that are safe to merge by summation.
package identity

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/normalize"
)

// Separator joins key parts; it never appears in normalized text.
const Separator = "|"

// primaryFields are the structured identity fields, in key order.
var primaryFields = []string{
	cards.FieldPlayer, cards.FieldSet, cards.FieldCardNumber, cards.FieldYear,
}

// strictExtraFields extend the primary key for the strict duplicate variant.
// Grade and condition are included deliberately: a raw and a graded copy of
// the same card are distinct inventory lines.
var strictExtraFields = []string{
	cards.FieldParallel, cards.FieldInsert, cards.FieldRookie,
	cards.FieldAutograph, cards.FieldSerialNumber,
	cards.FieldGrade, cards.FieldCondition,
}

// Key builds the primary identity key: normalized
// player|set|card_number|year, with blank structured fields backfilled from
// the listing title before falling back to empty.
func Key(rec cards.Record) string {
	parts := make([]string, 0, len(primaryFields))
	for _, f := range primaryFields {
		parts = append(parts, normalize.Text(primaryValue(rec, f)))
	}
	return strings.Join(parts, Separator)
}

// StrictKey builds the strict duplicate key: the primary key plus normalized
// variant and physical-state fields in fixed order. The order matters only
// for readability of the key; it is stable across runs.
func StrictKey(rec cards.Record) string {
	parts := []string{Key(rec)}
	for _, f := range strictExtraFields {
		parts = append(parts, normalize.Text(rec.Get(f)))
	}
	return strings.Join(parts, Separator)
}

// IsWeak reports whether fewer than two of the four primary fields resolved
// to a non-empty value. Two largely-blank rows would spuriously collide on a
// weak key, so callers should prefer FallbackKey instead.
func IsWeak(rec cards.Record) bool {
	populated := 0
	for _, f := range primaryFields {
		if normalize.Text(primaryValue(rec, f)) != "" {
			populated++
		}
	}
	return populated < 2
}

// FallbackKey keys a record with a weak structured key by its normalized
// title and first image URL instead.
func FallbackKey(rec cards.Record) string {
	return normalize.Text(rec.Get(cards.FieldTitle)) + Separator + rec.Get(cards.FieldImage)
}

// DeriveID deterministically derives a record id from the strict duplicate
// key, so re-running normalization on unchanged input reproduces the same id.
func DeriveID(rec cards.Record) string {
	h := fnv.New64a()
	h.Write([]byte(StrictKey(rec)))
	return fmt.Sprintf("card-%016x", h.Sum64())
}

// primaryValue reads a structured identity field, mining the title as a
// fallback when the column is blank.
func primaryValue(rec cards.Record, field string) string {
	if v := rec.Get(field); v != "" {
		return v
	}
	title := rec.Get(cards.FieldTitle)
	if title == "" {
		return ""
	}
	switch field {
	case cards.FieldCardNumber:
		return normalize.CardNumberFromTitle(title)
	case cards.FieldSet:
		return normalize.SetFromTitle(title)
	case cards.FieldYear:
		return normalize.Year(title)
	}
	return ""
}
