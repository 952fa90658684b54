// Package match scores candidate record pairs that already share a primary
// identity key. Scoring discriminates among tied candidates; it does not
// replace key-based bucketing.
package match

import (
	"strings"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/normalize"
)

// Weights are the additive per-field contributions. Identity fields dominate:
// player carries the largest weight, set and card number next, year smaller,
// team and league smallest. Partial (substring) matches on set and team
// contribute half the exact weight.
type Weights struct {
	Player     float64 `yaml:"player"`
	Set        float64 `yaml:"set"`
	CardNumber float64 `yaml:"card_number"`
	Year       float64 `yaml:"year"`
	Team       float64 `yaml:"team"`
	League     float64 `yaml:"league"`
}

// DefaultWeights returns the calibrated default weights. These are empirical
// policy parameters, not physical constants; tune them against real data
// before relying on exact thresholds.
func DefaultWeights() Weights {
	return Weights{
		Player:     4,
		Set:        2.5,
		CardNumber: 2.5,
		Year:       1.5,
		Team:       1,
		League:     0.5,
	}
}

// Scorer computes similarity scores and applies the floor/gap acceptance
// policy.
type Scorer struct {
	Weights Weights
	// Floor is the minimum absolute score a match must reach.
	Floor float64
	// Gap is the minimum lead the best candidate must have over the
	// runner-up before the match is accepted.
	Gap float64
}

// NewScorer returns a scorer with the default weights, floor 8 and gap 1.
func NewScorer() *Scorer {
	return &Scorer{Weights: DefaultWeights(), Floor: 8, Gap: 1}
}

// Score computes the weighted similarity between two records. It is pure and
// reproducible: the same pair always yields the same score.
func (s *Scorer) Score(old, cand cards.Record) float64 {
	var score float64
	score += exact(old, cand, cards.FieldPlayer, s.Weights.Player)
	score += partial(old, cand, cards.FieldSet, s.Weights.Set)
	score += exact(old, cand, cards.FieldCardNumber, s.Weights.CardNumber)
	score += year(old, cand, s.Weights.Year)
	score += partial(old, cand, cards.FieldTeam, s.Weights.Team)
	score += exact(old, cand, cards.FieldLeague, s.Weights.League)
	return score
}

// Decision classifies the outcome of candidate selection.
type Decision int

const (
	// NoCandidates means the candidate list was empty.
	NoCandidates Decision = iota
	// Accepted means the top candidate cleared the floor and the gap.
	Accepted
	// BelowFloor means the best score did not reach the floor.
	BelowFloor
	// AmbiguousGap means the lead over the runner-up was too small.
	AmbiguousGap
)

// Selection is the result of scoring a candidate list against a record.
type Selection struct {
	Decision Decision
	// Best is the index of the winning candidate in input order; -1 when
	// the list was empty.
	Best  int
	Score float64
	// RunnerUp records the second-best candidate for audit; -1 when the
	// list had a single entry.
	RunnerUp      int
	RunnerUpScore float64
}

// Best scores every candidate and applies the acceptance policy. Ties on the
// top score resolve to the first candidate in input order; the runner-up is
// recorded for the audit report.
func (s *Scorer) Best(old cards.Record, cands []cards.Record) Selection {
	sel := Selection{Decision: NoCandidates, Best: -1, RunnerUp: -1}
	if len(cands) == 0 {
		return sel
	}

	for i, cand := range cands {
		score := s.Score(old, cand)
		switch {
		case sel.Best == -1 || score > sel.Score:
			if sel.Best != -1 {
				sel.RunnerUp, sel.RunnerUpScore = sel.Best, sel.Score
			}
			sel.Best, sel.Score = i, score
		case sel.RunnerUp == -1 || score > sel.RunnerUpScore:
			sel.RunnerUp, sel.RunnerUpScore = i, score
		}
	}

	switch {
	case sel.Score < s.Floor:
		// Low-confidence candidates are never forced; the caller treats a
		// single one as unmatched and several as ambiguous.
		sel.Decision = BelowFloor
	case sel.RunnerUp >= 0 && sel.Score-sel.RunnerUpScore < s.Gap:
		sel.Decision = AmbiguousGap
	default:
		sel.Decision = Accepted
	}
	return sel
}

// exact contributes the full weight when both normalized values are
// non-empty and equal.
func exact(a, b cards.Record, field string, weight float64) float64 {
	x, y := normalize.Text(a.Get(field)), normalize.Text(b.Get(field))
	if x != "" && x == y {
		return weight
	}
	return 0
}

// partial contributes the full weight on an exact match and half the weight
// when one normalized value contains the other.
func partial(a, b cards.Record, field string, weight float64) float64 {
	x, y := normalize.Text(a.Get(field)), normalize.Text(b.Get(field))
	if x == "" || y == "" {
		return 0
	}
	if x == y {
		return weight
	}
	if strings.Contains(x, y) || strings.Contains(y, x) {
		return weight / 2
	}
	return 0
}

// year compares extracted 4-digit years so "2023-24" and "2023" agree.
func year(a, b cards.Record, weight float64) float64 {
	x, y := normalize.Year(a.Get(cards.FieldYear)), normalize.Year(b.Get(cards.FieldYear))
	if x != "" && x == y {
		return weight
	}
	return 0
}
