package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoeboxhq/shoebox/pkg/merge"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 8.0, p.Floor)
	assert.Equal(t, 1.0, p.Gap)
	assert.Equal(t, 4.0, p.Weights.Player)
	assert.Equal(t, merge.KeepOld, p.Merge.Values)
	assert.False(t, p.Merge.FillBlanks)
}

func TestLoadPolicyFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := `
floor: 10
weights:
  player: 6
merge:
  fill_blanks: true
  values: max
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Floor)
	assert.Equal(t, 1.0, p.Gap) // untouched default
	assert.Equal(t, 6.0, p.Weights.Player)
	assert.True(t, p.Merge.FillBlanks)
	assert.Equal(t, merge.Max, p.Merge.Values)

	scorer := p.Scorer()
	assert.Equal(t, 10.0, scorer.Floor)
	assert.Equal(t, 6.0, scorer.Weights.Player)
}

func TestLoadPolicyFileBadStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merge:\n  values: average\n"), 0o644))

	_, err := LoadPolicyFile(path)
	assert.Error(t, err)
}

func TestLoadPolicyFileMissing(t *testing.T) {
	_, err := LoadPolicyFile("/nonexistent/policy.yaml")
	assert.Error(t, err)
}
