// Package reconcile drives the inventory pipeline end to end: it loads
// delimited datasets, canonicalizes rows, indexes candidates by identity
// key, classifies each authoritative row as matched, unmatched or ambiguous,
// merges matched pairs, and emits the output set plus a structured report.
package reconcile

import (
	"sort"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/errors"
	"github.com/shoeboxhq/shoebox/pkg/identity"
	"github.com/shoeboxhq/shoebox/pkg/tabular"
)

// Dataset is one parsed and canonicalized input file.
type Dataset struct {
	Path    string
	Records []cards.Record
	// Columns is the dataset's canonical header order, derived from the
	// file's original header order with aliases resolved.
	Columns []string
}

// LoadOptions configure dataset loading.
type LoadOptions struct {
	// Delimiter pins the field delimiter; zero auto-detects.
	Delimiter rune
	// ImageBaseURL rewrites bare image filenames; empty uses the default.
	ImageBaseURL string
	// SourceLabel stamps the source field on records that lack one.
	SourceLabel string
}

// Load reads and canonicalizes a delimited file. A missing or unreadable
// file is a fatal input error: the caller must abort before writing any
// output.
func Load(path string, opts LoadOptions) (*Dataset, error) {
	var parseOpts []tabular.Option
	if opts.Delimiter != 0 {
		parseOpts = append(parseOpts, tabular.WithDelimiter(opts.Delimiter))
	}
	table, err := tabular.ReadFile(path, parseOpts...)
	if err != nil {
		return nil, err
	}
	return FromTable(path, table, opts), nil
}

// FromTable canonicalizes an already-parsed table; used by tests and by
// callers that parse from memory.
func FromTable(path string, table *tabular.Table, opts LoadOptions) *Dataset {
	ds := &Dataset{Path: path}
	if table == nil {
		return ds
	}

	seen := map[string]bool{}
	for _, h := range table.Headers {
		field := cards.CanonicalHeader(h)
		if field == "" || seen[field] {
			continue
		}
		seen[field] = true
		ds.Columns = append(ds.Columns, field)
	}

	for _, row := range table.Rows {
		rec := cards.Canonicalize(table.Headers, row, opts.ImageBaseURL)
		if opts.SourceLabel != "" && !rec.Has(cards.FieldSource) {
			rec.Set(cards.FieldSource, opts.SourceLabel)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// Normalize produces the canonical row set for a single dataset: fixed
// canonical header order with synthetic columns appended, quantities
// defaulted, and missing ids derived deterministically so re-running on the
// output reproduces it unchanged.
func Normalize(ds *Dataset) ([]string, []cards.Record, error) {
	if ds.Empty() {
		return nil, nil, errors.ErrEmptyDataset
	}

	out := make([]cards.Record, 0, len(ds.Records))
	for _, rec := range ds.Records {
		norm := rec.Clone()
		if !norm.Has(cards.FieldID) {
			norm.Set(cards.FieldID, identity.DeriveID(norm))
		}
		out = append(out, norm)
	}
	return outputColumns(cards.Fields(), out), out, nil
}

// keyFor buckets a record by its primary identity key, falling back to the
// title/image key when the structured key is weak.
func keyFor(rec cards.Record) string {
	if identity.IsWeak(rec) {
		return identity.FallbackKey(rec)
	}
	return identity.Key(rec)
}

// strictKeyFor buckets a record by its strict duplicate key with the same
// weak-key fallback.
func strictKeyFor(rec cards.Record) string {
	if identity.IsWeak(rec) {
		return identity.FallbackKey(rec)
	}
	return identity.StrictKey(rec)
}

// outputColumns extends a base column order with any additional columns
// present on the rows: canonical fields keep their fixed order, synthetic
// and shadow columns append sorted for determinism.
func outputColumns(base []string, rows []cards.Record) []string {
	seen := make(map[string]bool, len(base))
	cols := make([]string, 0, len(base))
	for _, c := range base {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	extraSet := map[string]bool{}
	for _, row := range rows {
		for col := range row {
			if !seen[col] && !extraSet[col] {
				extraSet[col] = true
			}
		}
	}
	var canonical, extra []string
	for col := range extraSet {
		if cards.IsCanonical(col) {
			canonical = append(canonical, col)
		} else {
			extra = append(extra, col)
		}
	}
	sort.Strings(canonical)
	sort.Strings(extra)
	return append(append(cols, canonical...), extra...)
}
