// Package config centralizes Viper key names, defaults and the optional
// YAML policy file. Flags, environment variables and config files all land
// in the same keys so the CLI layers stay thin.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/shoeboxhq/shoebox/pkg/errors"
	"github.com/shoeboxhq/shoebox/pkg/match"
	"github.com/shoeboxhq/shoebox/pkg/merge"
	"github.com/shoeboxhq/shoebox/pkg/normalize"
)

// Viper keys.
const (
	KeyFillBlanks    = "merge.fill_blanks"
	KeyMergeValues   = "merge.values"
	KeyNoteSeparator = "merge.note_separator"
	KeyMatchFloor    = "match.floor"
	KeyMatchGap      = "match.gap"
	KeyImageBaseURL  = "images.base_url"
	KeySampleLimit   = "report.sample_limit"
	KeyPolicyFile    = "policy_file"
)

// SetDefaults registers the default values for every key. Call once from the
// root command before binding flags.
func SetDefaults() {
	def := merge.DefaultPolicy()
	scorer := match.NewScorer()

	viper.SetDefault(KeyFillBlanks, def.FillBlanks)
	viper.SetDefault(KeyMergeValues, string(def.Values))
	viper.SetDefault(KeyNoteSeparator, def.NoteSeparator)
	viper.SetDefault(KeyMatchFloor, scorer.Floor)
	viper.SetDefault(KeyMatchGap, scorer.Gap)
	viper.SetDefault(KeyImageBaseURL, normalize.DefaultImageBaseURL)
	viper.SetDefault(KeySampleLimit, 25)
}

// GetString checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// Policy is the file form of the run policy: scoring weights and thresholds
// plus merge behavior, pinned independently of global configuration.
type Policy struct {
	Weights match.Weights `yaml:"weights"`
	Floor   float64       `yaml:"floor"`
	Gap     float64       `yaml:"gap"`
	Merge   merge.Policy  `yaml:"merge"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	scorer := match.NewScorer()
	return Policy{
		Weights: scorer.Weights,
		Floor:   scorer.Floor,
		Gap:     scorer.Gap,
		Merge:   merge.DefaultPolicy(),
	}
}

// LoadPolicyFile reads a YAML policy document over the built-in defaults.
// Fields absent from the file keep their defaults.
func LoadPolicyFile(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, errors.WrapIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, errors.WrapParse("yaml", path, err)
	}
	values, err := merge.ParseValueStrategy(string(policy.Merge.Values))
	if err != nil {
		return policy, errors.WrapValidation("merge.values", err)
	}
	policy.Merge.Values = values
	return policy, nil
}

// Scorer builds a match scorer from the policy.
func (p Policy) Scorer() *match.Scorer {
	return &match.Scorer{Weights: p.Weights, Floor: p.Floor, Gap: p.Gap}
}
