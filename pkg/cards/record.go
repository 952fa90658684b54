package cards

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoeboxhq/shoebox/pkg/normalize"
)

// Record is one canonical card record: a mapping from canonical (or
// synthetic slugified) field names to string values. Blank values and
// missing keys are equivalent.
type Record map[string]string

// Get returns the value for a field, or "" when absent.
func (r Record) Get(field string) string {
	return r[field]
}

// Set assigns a field value. Empty values are stored as-is so callers can
// distinguish "explicitly blank" only by Has.
func (r Record) Set(field, value string) {
	r[field] = value
}

// Has reports whether the field is present with a non-blank value.
func (r Record) Has(field string) bool {
	return r[field] != ""
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Quantity returns the record quantity, defaulting to 1 per the canonical
// invariant.
func (r Record) Quantity() int {
	return normalize.Quantity(r[FieldQuantity])
}

// Money parses a money-valued field. The boolean is false when the field is
// blank or unparsable, which is distinct from an explicit zero.
func (r Record) Money(field string) (decimal.Decimal, bool) {
	return normalize.Money(r[field])
}

// Timestamp parses the bookkeeping timestamp field.
func (r Record) Timestamp() (time.Time, bool) {
	return normalize.Time(r[FieldTimestamp])
}

// Columns returns all field names present on the record: canonical fields in
// fixed order first, then any synthetic fields sorted for determinism.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for _, f := range fieldOrder {
		if _, ok := r[f]; ok {
			cols = append(cols, f)
		}
	}
	var extra []string
	for k := range r {
		if !canonicalSet[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// completenessFields are the high-value fields counted when picking the
// best row among exact duplicates lacking richer tie-break data.
var completenessFields = []string{
	FieldPlayer, FieldSet, FieldCardNumber, FieldYear,
	FieldParallel, FieldSerialNumber, FieldGrade, FieldCondition,
	FieldPurchase, FieldValue, FieldImage, FieldImageBack, FieldNotes,
}

// Completeness returns a heuristic count of populated high-value fields.
func (r Record) Completeness() int {
	n := 0
	for _, f := range completenessFields {
		if r.Has(f) {
			n++
		}
	}
	return n
}

// Canonicalize builds a canonical Record from a raw parsed row, visiting
// columns in the file's header order. Header aliases are resolved once here;
// field values are coerced best-effort and blank identity fields are
// backfilled from the free-text title when one is present. When two raw
// headers alias to the same canonical field, the first non-empty column in
// header order wins, so the result is independent of map iteration order.
// A nil headers slice falls back to sorted raw keys. imageBaseURL may be ""
// for the default.
func Canonicalize(headers []string, raw map[string]string, imageBaseURL string) Record {
	rec := make(Record, len(raw))
	var frontCells, backCells []string

	for _, rawHeader := range headerOrder(headers, raw) {
		value := raw[rawHeader]
		field := CanonicalHeader(rawHeader)
		if field == "" || value == "" {
			continue
		}
		switch field {
		case FieldImage:
			// Image cells may carry multiple URLs in one cell; collect and
			// assign front/back after all columns are seen.
			frontCells = append(frontCells, value)
			continue
		case FieldImageBack:
			backCells = append(backCells, value)
			continue
		}
		if rec.Has(field) {
			continue
		}
		switch field {
		case FieldYear:
			if y := normalize.Year(value); y != "" {
				rec[FieldYear] = y
			}
		case FieldQuantity:
			rec[FieldQuantity] = strconv.Itoa(normalize.Quantity(value))
		case FieldPurchase, FieldValue:
			if d, ok := normalize.Money(value); ok {
				rec[field] = d.String()
			}
		case FieldRookie, FieldAutograph:
			rec[field] = normalize.Boolean(value)
		default:
			rec[field] = value
		}
	}

	assignImages(rec, frontCells, backCells, imageBaseURL)
	backfillFromTitle(rec)

	if !rec.Has(FieldQuantity) {
		rec[FieldQuantity] = "1"
	}
	return rec
}

// headerOrder yields the raw column visit order: the file's header order
// when known, otherwise sorted keys so the result stays deterministic.
func headerOrder(headers []string, raw map[string]string) []string {
	if len(headers) > 0 {
		return headers
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// assignImages resolves collected image cells into the front/back fields.
// Back-sourced URLs never land in the front slot; a second front URL fills
// the back slot only when no back column provided one.
func assignImages(rec Record, frontCells, backCells []string, baseURL string) {
	var front, back []string
	for _, cell := range frontCells {
		front = append(front, normalize.ImageList(cell, baseURL)...)
	}
	for _, cell := range backCells {
		back = append(back, normalize.ImageList(cell, baseURL)...)
	}
	if len(front) > 0 {
		rec[FieldImage] = front[0]
	}
	switch {
	case len(back) > 0:
		rec[FieldImageBack] = back[0]
	case len(front) > 1:
		rec[FieldImageBack] = front[1]
	}
}

// backfillFromTitle fills blank identity fields from the listing title.
// Title mining is approximate and never overrides a populated column.
func backfillFromTitle(rec Record) {
	title := rec[FieldTitle]
	if title == "" {
		return
	}
	if !rec.Has(FieldYear) {
		rec[FieldYear] = normalize.Year(title)
	}
	if !rec.Has(FieldCardNumber) {
		rec[FieldCardNumber] = normalize.CardNumberFromTitle(title)
	}
	if !rec.Has(FieldSet) {
		rec[FieldSet] = normalize.SetFromTitle(title)
	}
	if !rec.Has(FieldPlayer) && rec.Has(FieldSet) {
		// The remainder of the title past the card number is usually the
		// player name; only used when nothing structured is available.
		if num := rec[FieldCardNumber]; num != "" {
			if idx := indexAfter(title, num); idx > 0 && idx < len(title) {
				if player := strings.TrimSpace(title[idx:]); normalize.Text(player) != "" {
					rec[FieldPlayer] = player
				}
			}
		}
	}
	// Drop keys that resolved to empty so Has stays meaningful.
	for _, f := range []string{FieldYear, FieldCardNumber, FieldSet} {
		if rec[f] == "" {
			delete(rec, f)
		}
	}
}

func indexAfter(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i + len(sub)
		}
	}
	return -1
}
