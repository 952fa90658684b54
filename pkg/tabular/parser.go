// Package tabular parses and writes delimited text files (CSV, TSV,
// semicolon- or pipe-separated) without requiring the caller to know the
// delimiter up front. Quoted fields may contain the delimiter and literal
// newlines; quote state is tracked across physical lines by quote-count
// parity, a deliberate tolerance rather than strict RFC 4180 lookahead.
package tabular

import (
	"os"
	"strings"

	"github.com/shoeboxhq/shoebox/pkg/errors"
)

// delimiters are the candidate delimiters in fixed preference order; comma
// doubles as the last-resort default.
var delimiters = []rune{',', '\t', ';', '|'}

// Table is the parsed form of one delimited input: the trimmed header labels
// and one map per data row keyed by those labels.
type Table struct {
	Headers   []string
	Rows      []map[string]string
	Delimiter rune
}

// Empty reports whether the table has no headers or no data rows. Callers
// must check this before indexing: empty input is a valid parse result, not
// an error.
func (t *Table) Empty() bool {
	return t == nil || len(t.Headers) == 0 || len(t.Rows) == 0
}

// Option configures parsing.
type Option func(*options)

type options struct {
	delimiter rune
}

// WithDelimiter pins the delimiter instead of auto-detecting it.
func WithDelimiter(d rune) Option {
	return func(o *options) { o.delimiter = d }
}

// Detect evaluates the candidate delimiters against a header line and
// returns the one yielding the most fields. Ties keep the earlier candidate
// in preference order, so comma wins when nothing splits.
func Detect(header string) rune {
	best := delimiters[0]
	bestCount := len(splitRecord(header, best))
	for _, d := range delimiters[1:] {
		if n := len(splitRecord(header, d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// Parse tokenizes raw text into a Table. Blank lines are dropped, a final
// unterminated record is still emitted if non-empty, and empty input yields
// an empty Table with a nil error.
func Parse(text string, opts ...Option) *Table {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	text = strings.TrimPrefix(text, "\ufeff") // tolerate UTF-8 BOM
	records := logicalRecords(text)
	if len(records) == 0 {
		return &Table{}
	}

	delim := o.delimiter
	if delim == 0 {
		delim = Detect(records[0])
	}

	headers := splitRecord(records[0], delim)
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers, Delimiter: delim}
	for _, record := range records[1:] {
		cells := splitRecord(record, delim)
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = strings.TrimSpace(cells[i])
			} else {
				row[h] = "" // missing trailing cells
			}
		}
		// cells beyond the header count are dropped
		table.Rows = append(table.Rows, row)
	}
	return table
}

// ReadFile parses a delimited file from disk. A missing or unreadable file
// is a fatal input error for the caller to surface.
func ReadFile(path string, opts ...Option) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(string(data), opts...), nil
}

// logicalRecords splits text into records, joining physical lines while an
// unterminated quote is open. A doubled quote contributes an even count and
// so does not toggle the open state.
func logicalRecords(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var records []string
	var pending strings.Builder
	open := false

	for _, line := range lines {
		if !open && strings.TrimSpace(line) == "" {
			continue // blank lines dropped
		}
		if open {
			pending.WriteByte('\n')
			pending.WriteString(line)
		} else {
			pending.WriteString(line)
		}
		if strings.Count(line, `"`)%2 == 1 {
			open = !open
		}
		if !open {
			records = append(records, pending.String())
			pending.Reset()
		}
	}
	// final unterminated record is still emitted if non-empty
	if pending.Len() > 0 && strings.TrimSpace(pending.String()) != "" {
		records = append(records, pending.String())
	}
	return records
}

// splitRecord splits one logical record on the delimiter, honoring
// double-quote quoting. An internal "" inside a quoted field is one literal
// quote character.
func splitRecord(record string, delim rune) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(record)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, field.String())
}
