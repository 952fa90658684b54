package cards

import (
	"strings"
)

// headerAliases maps normalized raw header labels onto canonical field names.
// The table is built once at startup and never mutated; it enumerates the
// common variants seen in eBay-style bulk exports, hand-edited research
// sheets, and spreadsheet exports of the normalized schema.
var headerAliases = map[string]string{
	// identity
	"sport":    FieldSport,
	"category": FieldSport,
	"yr":       FieldYear,
	"season":   FieldYear,
	"release year": FieldYear,
	"card year":    FieldYear,

	"set name":     FieldSet,
	"product":      FieldSet,
	"product line": FieldSet,
	"brand":        FieldSet,
	"series":       FieldSet,

	"sub set":    FieldSubset,
	"subset name": FieldSubset,

	"card #":      FieldCardNumber,
	"card#":       FieldCardNumber,
	"card number": FieldCardNumber,
	"card no":     FieldCardNumber,
	"card no.":    FieldCardNumber,
	"#":           FieldCardNumber,
	"number":      FieldCardNumber,
	"no.":         FieldCardNumber,

	"player name": FieldPlayer,
	"athlete":     FieldPlayer,
	"subject":     FieldPlayer,
	"name":        FieldPlayer,

	"team name": FieldTeam,
	"club":      FieldTeam,

	"lg": FieldLeague,

	// variant / parallel identity
	"parallel type": FieldParallel,
	"variation":     FieldParallel,
	"color":         FieldParallel,
	"refractor":     FieldParallel,

	"insert set": FieldInsert,

	"rc":          FieldRookie,
	"rookie card": FieldRookie,
	"is rookie":   FieldRookie,

	"auto":        FieldAutograph,
	"autographed": FieldAutograph,
	"signed":      FieldAutograph,

	"serial":           FieldSerialNumber,
	"serial #":         FieldSerialNumber,
	"serial no":        FieldSerialNumber,
	"numbered":         FieldSerialNumber,
	"print run":        FieldSerialNumber,
	"serial numbering": FieldSerialNumber,

	// physical state
	"grading":    FieldGrade,
	"psa grade":  FieldGrade,
	"graded":     FieldGrade,
	"cond":       FieldCondition,
	"item condition": FieldCondition,

	// commercial
	"qty":                FieldQuantity,
	"quantity available": FieldQuantity,
	"available quantity": FieldQuantity,
	"count":              FieldQuantity,

	"price":          FieldPurchase,
	"paid":           FieldPurchase,
	"price paid":     FieldPurchase,
	"cost":           FieldPurchase,
	"buy price":      FieldPurchase,
	"purchase price": FieldPurchase,

	"est value":       FieldValue,
	"estimated value": FieldValue,
	"market value":    FieldValue,
	"current value":   FieldValue,
	"asking price":    FieldValue,
	"start price":     FieldValue,

	"curr": FieldCurrency,

	// media
	"img":         FieldImage,
	"photo":       FieldImage,
	"front":       FieldImage,
	"front image": FieldImage,
	"picture":     FieldImage,
	"picture url": FieldImage,
	"pictureurl":  FieldImage,
	"image url":   FieldImage,
	"photo url":   FieldImage,
	"pic":         FieldImage,
	"images":      FieldImage,

	"back":           FieldImageBack,
	"back image":     FieldImageBack,
	"img back":       FieldImageBack,
	"image back":     FieldImageBack,
	"photo back":     FieldImageBack,
	"rear image":     FieldImageBack,
	"back image url": FieldImageBack,

	// bookkeeping
	"sku":                FieldID,
	"custom label":       FieldID,
	"custom label (sku)": FieldID,
	"item id":            FieldID,
	"item number":        FieldID,
	"lot id":             FieldID,
	"record id":          FieldID,
	"uuid":               FieldID,

	"note":     FieldNotes,
	"comments": FieldNotes,
	"comment":  FieldNotes,
	"remarks":  FieldNotes,
	"memo":     FieldNotes,

	"origin":      FieldSource,
	"marketplace": FieldSource,
	"platform":    FieldSource,

	"updated":       FieldTimestamp,
	"updated at":    FieldTimestamp,
	"last updated":  FieldTimestamp,
	"last modified": FieldTimestamp,
	"modified":      FieldTimestamp,
	"date added":    FieldTimestamp,
	"date":          FieldTimestamp,

	// synthetic title field, kept for fallback extraction
	"item title":    FieldTitle,
	"listing title": FieldTitle,
}

// CanonicalHeader maps a raw header label to a canonical field name. The
// mapping is pure and stateless: trim and collapse whitespace, lower-case,
// look up the alias table, accept exact canonical names, and otherwise
// slugify into a best-effort synthetic field name that is preserved in
// output but ignored by matching and merge logic.
func CanonicalHeader(raw string) string {
	label := strings.ToLower(collapseWhitespace(strings.TrimSpace(raw)))
	if label == "" {
		return ""
	}
	if canonical, ok := headerAliases[label]; ok {
		return canonical
	}
	if canonicalSet[label] || label == FieldTitle {
		return label
	}
	return Slugify(label)
}

// Slugify converts a label into a snake_case field name: runs of
// non-alphanumerics become single underscores, leading and trailing
// underscores are trimmed.
func Slugify(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	lastUnderscore := false
	for _, r := range strings.ToLower(label) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
