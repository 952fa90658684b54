package merge

import (
	"sort"
	"strconv"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/identity"
)

// ShadowPrefix prefixes the shadow key that retains the losing value of a
// field collision.
const ShadowPrefix = "norm_"

// specialFields are handled outside the generic precedence rule.
var specialFields = map[string]bool{
	cards.FieldID:        true,
	cards.FieldTimestamp: true,
	cards.FieldNotes:     true,
	cards.FieldValue:     true,
	cards.FieldPurchase:  true,
}

// Merge combines a matched pair. The old (authoritative) record's fields take
// precedence; new fields fill blanks only when the policy enables it. When
// both sides define a field with different values, the losing value is kept
// under its norm_<field> shadow key. Inputs are never mutated.
func Merge(old, new cards.Record, policy Policy) cards.Record {
	merged := cards.Record{}
	for _, field := range unionColumns(old, new) {
		if specialFields[field] {
			continue
		}
		mergeGeneric(merged, field, old.Get(field), new.Get(field), policy)
	}

	mergeID(merged, old, new, false)
	mergeTimestamp(merged, old, new)
	mergeNotes(merged, old, new, policy)
	mergeMoney(merged, cards.FieldValue, old, new, policy)
	mergeMoney(merged, cards.FieldPurchase, old, new, policy)
	return merged
}

// MergeStrict combines two records sharing a strict duplicate key, i.e. the
// literal same physical card recorded twice. Quantity is summed, never
// overwritten, and a missing id is synthesized deterministically from the
// strict duplicate key.
func MergeStrict(old, new cards.Record, policy Policy) cards.Record {
	merged := Merge(old, new, policy)

	merged.Set(cards.FieldQuantity, strconv.Itoa(old.Quantity()+new.Quantity()))
	delete(merged, ShadowPrefix+cards.FieldQuantity)

	mergeID(merged, old, new, true)
	return merged
}

// mergeGeneric applies the base precedence rule to one field.
func mergeGeneric(merged cards.Record, field, oldV, newV string, policy Policy) {
	switch {
	case oldV == "" && newV == "":
		return
	case oldV == "":
		if policy.FillBlanks {
			merged.Set(field, newV)
		}
	case newV == "" || oldV == newV:
		merged.Set(field, oldV)
	default:
		merged.Set(field, oldV)
		merged.Set(ShadowPrefix+field, newV)
	}
}

// mergeID preserves the old id, falls back to the new one, and in the strict
// path synthesizes one from the strict duplicate key.
func mergeID(merged, old, new cards.Record, synthesize bool) {
	switch {
	case old.Has(cards.FieldID):
		merged.Set(cards.FieldID, old.Get(cards.FieldID))
		if new.Has(cards.FieldID) && new.Get(cards.FieldID) != old.Get(cards.FieldID) {
			merged.Set(ShadowPrefix+cards.FieldID, new.Get(cards.FieldID))
		}
	case new.Has(cards.FieldID):
		merged.Set(cards.FieldID, new.Get(cards.FieldID))
	case synthesize:
		merged.Set(cards.FieldID, identity.DeriveID(merged))
	}
}

// mergeTimestamp keeps the most recent of the two timestamps.
func mergeTimestamp(merged, old, new cards.Record) {
	oldT, oldOK := old.Timestamp()
	newT, newOK := new.Timestamp()
	switch {
	case oldOK && newOK:
		if newT.After(oldT) {
			merged.Set(cards.FieldTimestamp, new.Get(cards.FieldTimestamp))
		} else {
			merged.Set(cards.FieldTimestamp, old.Get(cards.FieldTimestamp))
		}
	case oldOK:
		merged.Set(cards.FieldTimestamp, old.Get(cards.FieldTimestamp))
	case newOK:
		merged.Set(cards.FieldTimestamp, new.Get(cards.FieldTimestamp))
	case old.Has(cards.FieldTimestamp):
		// unparsable but present; keep the authoritative cell untouched
		merged.Set(cards.FieldTimestamp, old.Get(cards.FieldTimestamp))
	case new.Has(cards.FieldTimestamp):
		merged.Set(cards.FieldTimestamp, new.Get(cards.FieldTimestamp))
	}
}

// mergeNotes concatenates differing notes; identical notes are not
// duplicated.
func mergeNotes(merged, old, new cards.Record, policy Policy) {
	oldN, newN := old.Get(cards.FieldNotes), new.Get(cards.FieldNotes)
	switch {
	case oldN == "" && newN == "":
	case oldN == "":
		merged.Set(cards.FieldNotes, newN)
	case newN == "" || oldN == newN:
		merged.Set(cards.FieldNotes, oldN)
	default:
		merged.Set(cards.FieldNotes, oldN+policy.NoteSeparator+newN)
	}
}

// mergeMoney applies the configured value strategy to one commercial field.
func mergeMoney(merged cards.Record, field string, old, new cards.Record, policy Policy) {
	oldD, oldOK := old.Money(field)
	newD, newOK := new.Money(field)

	switch {
	case !oldOK && !newOK:
		return
	case !oldOK:
		if policy.FillBlanks || policy.Values != KeepOld {
			merged.Set(field, new.Get(field))
		}
		return
	case !newOK:
		merged.Set(field, old.Get(field))
		return
	}

	winner := old
	switch policy.Values {
	case Max:
		if newD.GreaterThan(oldD) {
			winner = new
		}
	case Min:
		if newD.LessThan(oldD) {
			winner = new
		}
	case Newest:
		oldT, oldHasT := old.Timestamp()
		newT, newHasT := new.Timestamp()
		if newHasT && (!oldHasT || newT.After(oldT)) {
			winner = new
		}
	}

	merged.Set(field, winner.Get(field))
	loser := old
	if isSame(winner, old) {
		loser = new
	}
	if !oldD.Equal(newD) {
		merged.Set(ShadowPrefix+field, loser.Get(field))
	}
}

// isSame reports whether two record references are the same map.
func isSame(a, b cards.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// unionColumns returns the deduplicated union of both records' columns, old
// record order first so the authoritative dataset's layout is preserved.
func unionColumns(old, new cards.Record) []string {
	seen := make(map[string]bool, len(old)+len(new))
	var cols []string
	for _, c := range old.Columns() {
		seen[c] = true
		cols = append(cols, c)
	}
	var extra []string
	for _, c := range new.Columns() {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}
