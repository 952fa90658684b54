package tabular

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoeboxhq/shoebox/pkg/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{"comma", "year,set,player", ','},
		{"tab", "year\tset\tplayer", '\t'},
		{"semicolon", "year;set;player", ';'},
		{"pipe", "year|set|player", '|'},
		{"comma wins ties", "singleheader", ','},
		{"quoted delimiter ignored", `"a;b";c;d`, ';'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.header))
		})
	}
}

func TestParseQuotedCommaStaysUnsplit(t *testing.T) {
	table := Parse("year,set,card_number,player,quantity\n2024,Topps,#7,\"Messi, L.\",10\n")
	require.False(t, table.Empty())
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Messi, L.", table.Rows[0]["player"])
	assert.Equal(t, "10", table.Rows[0]["quantity"])
}

func TestParseEmbeddedNewline(t *testing.T) {
	table := Parse("player,notes\nMessi,\"line one\nline two\"\n")
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "line one\nline two", table.Rows[0]["notes"])
}

func TestParseDoubledQuoteIsLiteral(t *testing.T) {
	table := Parse("player,notes\nMessi,\"the \"\"GOAT\"\" card\"\n")
	require.Len(t, table.Rows, 1)
	assert.Equal(t, `the "GOAT" card`, table.Rows[0]["notes"])
}

func TestParseBlankLinesDropped(t *testing.T) {
	table := Parse("a,b\n\n1,2\n   \n3,4\n")
	assert.Len(t, table.Rows, 2)
}

func TestParseMissingTrailingCells(t *testing.T) {
	table := Parse("a,b,c\n1,2\n")
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["c"])
}

func TestParseExtraCellsDropped(t *testing.T) {
	table := Parse("a,b\n1,2,3,4\n")
	require.Len(t, table.Rows, 1)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, table.Rows[0])
}

func TestParseEmptyInput(t *testing.T) {
	assert.True(t, Parse("").Empty())
	assert.True(t, Parse("\n\n  \n").Empty())
	// header only, no data rows
	assert.True(t, Parse("a,b,c\n").Empty())
}

func TestParseBOM(t *testing.T) {
	table := Parse("\ufeffa,b\n1,2\n")
	assert.Equal(t, []string{"a", "b"}, table.Headers)
}

func TestParseDelimiterHint(t *testing.T) {
	// One pipe row would auto-detect pipe; the hint forces comma.
	table := Parse("a|b\nx|y\n", WithDelimiter(','))
	assert.Equal(t, []string{"a|b"}, table.Headers)
}

func TestParseTSV(t *testing.T) {
	table := Parse("year\tplayer\n2024\tMessi\n")
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Messi", table.Rows[0]["player"])
	assert.Equal(t, '\t', table.Delimiter)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteQuoting(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []string{"player", "notes"}, []map[string]string{
		{"player": "Messi, L.", "notes": `has "wear"`},
	}, ',')
	require.NoError(t, err)
	assert.Equal(t, "player,notes\n\"Messi, L.\",\"has \"\"wear\"\"\"\n", buf.String())
}

func TestWriteParseRoundTrip(t *testing.T) {
	headers := []string{"player", "set", "notes"}
	rows := []map[string]string{
		{"player": "Messi, L.", "set": "Topps", "notes": "multi\nline"},
		{"player": "José Ramírez", "set": "Prizm | Silver", "notes": ""},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, headers, rows, ','))

	table := Parse(buf.String())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, rows[0]["notes"], table.Rows[0]["notes"])
	assert.Equal(t, rows[1]["player"], table.Rows[1]["player"])
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(path, []string{"a"}, []map[string]string{{"a": "1"}}, ','))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
