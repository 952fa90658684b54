package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"diacritics fold", "José Ramírez", "jose ramirez"},
		{"case and whitespace", "  JOSE   ramirez ", "jose ramirez"},
		{"ampersand", "Donruss & Co.", "donruss and co"},
		{"punctuation collapse", "O'Neil—Jr. (RC)", "o neil jr rc"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestTextStableOnItsOwnOutput(t *testing.T) {
	inputs := []string{"José Ramírez", "2023-24 Panini Prizm", "Kit & Caboodle #7"}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once))
	}
}

func TestYear(t *testing.T) {
	assert.Equal(t, "2023", Year("2023-24"))
	assert.Equal(t, "1989", Year("1989 Upper Deck"))
	assert.Equal(t, "2024", Year("released 2024-05"))
	assert.Equal(t, "", Year("no year here"))
	assert.Equal(t, "", Year("1889 cabinet card"))
}

func TestMoney(t *testing.T) {
	d, ok := Money("$1,234.50")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.50")))

	d, ok = Money("0")
	require.True(t, ok)
	assert.True(t, d.IsZero())

	_, ok = Money("")
	assert.False(t, ok)

	_, ok = Money("n/a")
	assert.False(t, ok)

	d, ok = Money("-5.25")
	require.True(t, ok)
	assert.True(t, d.IsNegative())
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, 3, Quantity("3"))
	assert.Equal(t, 0, Quantity("0"))
	assert.Equal(t, 1, Quantity(""))
	assert.Equal(t, 1, Quantity("many"))
	assert.Equal(t, 1, Quantity("-2"))
}

func TestBoolean(t *testing.T) {
	for _, s := range []string{"1", "TRUE", "Yes", "y", "t"} {
		assert.Equal(t, "true", Boolean(s), s)
	}
	for _, s := range []string{"0", "False", "NO", "n", "f"} {
		assert.Equal(t, "false", Boolean(s), s)
	}
	assert.Equal(t, "maybe", Boolean(" Maybe "))
	assert.Equal(t, "", Boolean("  "))
}

func TestTime(t *testing.T) {
	got, ok := Time("2024-03-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	got, ok = Time("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())

	_, ok = Time("yesterday")
	assert.False(t, ok)

	_, ok = Time("")
	assert.False(t, ok)
}

func TestCardNumberFromTitle(t *testing.T) {
	assert.Equal(t, "221", CardNumberFromTitle("2024 Topps #221 Messi"))
	assert.Equal(t, "RC-7", CardNumberFromTitle("2021 Select #RC-7 rookie"))
	assert.Equal(t, "44", CardNumberFromTitle("Upper Deck no. 44 Gretzky"))
	assert.Equal(t, "", CardNumberFromTitle("Topps Chrome Messi"))
}

func TestSetFromTitle(t *testing.T) {
	assert.Equal(t, "Panini Prizm", SetFromTitle("2023-24 Panini Prizm #221 Haaland"))
	assert.Equal(t, "Topps", SetFromTitle("2024 Topps #7 Messi"))
	assert.Equal(t, "Upper Deck", SetFromTitle("1989 Upper Deck no. 1 Griffey"))
	assert.Equal(t, "", SetFromTitle(""))
}

func TestImageList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "pipe separated bare filenames",
			raw:  "a.jpg | b.jpg",
			want: []string{DefaultImageBaseURL + "/a.jpg", DefaultImageBaseURL + "/b.jpg"},
		},
		{
			name: "json array",
			raw:  `["https://cdn.example.com/x.png", "y.png"]`,
			want: []string{"https://cdn.example.com/x.png", DefaultImageBaseURL + "/y.png"},
		},
		{
			name: "front back key value",
			raw:  "back=b.jpg front=a.jpg",
			want: []string{DefaultImageBaseURL + "/a.jpg", DefaultImageBaseURL + "/b.jpg"},
		},
		{
			name: "absolute urls pass through",
			raw:  "https://cdn.example.com/front.jpg",
			want: []string{"https://cdn.example.com/front.jpg"},
		},
		{
			name: "empty",
			raw:  "   ",
			want: nil,
		},
		{
			name: "malformed json falls back to split",
			raw:  `[not-json.jpg`,
			want: []string{DefaultImageBaseURL + "/[not-json.jpg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageList(tt.raw, ""))
		})
	}
}

func TestImageListCustomBase(t *testing.T) {
	got := ImageList("scan.png", "https://assets.example.com/cards/")
	assert.Equal(t, []string{"https://assets.example.com/cards/scan.png"}, got)
}
