// Package cards defines the canonical card record model shared by the whole
// reconciliation pipeline: the fixed field set, header alias resolution, and
// typed accessors over string-valued records.
package cards

// Canonical field names. Every ingested row is mapped onto this schema once,
// at ingestion; downstream code never re-resolves aliases.
const (
	FieldSport        = "sport"
	FieldYear         = "year"
	FieldSet          = "set"
	FieldSubset       = "subset"
	FieldCardNumber   = "card_number"
	FieldPlayer       = "player"
	FieldTeam         = "team"
	FieldLeague       = "league"
	FieldParallel     = "parallel"
	FieldInsert       = "insert"
	FieldRookie       = "rookie"
	FieldAutograph    = "autograph"
	FieldSerialNumber = "serial_number"
	FieldGrade        = "grade"
	FieldCondition    = "condition"
	FieldQuantity     = "quantity"
	FieldPurchase     = "purchase_price"
	FieldValue        = "value"
	FieldCurrency     = "currency"
	FieldImage        = "image"
	FieldImageBack    = "image_back"
	FieldID           = "id"
	FieldNotes        = "notes"
	FieldSource       = "source"
	FieldTimestamp    = "timestamp"

	// FieldTitle is not part of the canonical schema but is a recognized
	// synthetic field: free-text listing titles are kept for fallback
	// extraction of card number, set and year.
	FieldTitle = "title"
)

// fieldOrder is the fixed canonical header order for normalized outputs.
var fieldOrder = []string{
	FieldSport, FieldYear, FieldSet, FieldSubset, FieldCardNumber,
	FieldPlayer, FieldTeam, FieldLeague,
	FieldParallel, FieldInsert, FieldRookie, FieldAutograph, FieldSerialNumber,
	FieldGrade, FieldCondition,
	FieldQuantity, FieldPurchase, FieldValue, FieldCurrency,
	FieldImage, FieldImageBack,
	FieldID, FieldNotes, FieldSource, FieldTimestamp,
}

var canonicalSet = func() map[string]bool {
	m := make(map[string]bool, len(fieldOrder))
	for _, f := range fieldOrder {
		m[f] = true
	}
	return m
}()

// Fields returns the canonical field names in fixed output order.
func Fields() []string {
	out := make([]string, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// IsCanonical reports whether name is one of the canonical field names.
func IsCanonical(name string) bool {
	return canonicalSet[name]
}
