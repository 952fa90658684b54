package reconcile

import (
	"context"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/logging"
	"github.com/shoeboxhq/shoebox/pkg/match"
	"github.com/shoeboxhq/shoebox/pkg/merge"
)

// DefaultSampleLimit bounds the sample arrays in reports.
const DefaultSampleLimit = 25

// Reconciler matches an authoritative dataset against a reference dataset
// and merges the pairs that clear the confidence policy.
type Reconciler struct {
	Scorer      *match.Scorer
	Policy      merge.Policy
	SampleLimit int
}

// NewReconciler returns a reconciler with the given scoring and merge
// policies and the default report sample limit.
func NewReconciler(scorer *match.Scorer, policy merge.Policy) *Reconciler {
	if scorer == nil {
		scorer = match.NewScorer()
	}
	return &Reconciler{Scorer: scorer, Policy: policy, SampleLimit: DefaultSampleLimit}
}

// RowState is the terminal classification of an authoritative row.
type RowState string

// Row states.
const (
	StateMatched   RowState = "matched"
	StateUnmatched RowState = "unmatched"
	StateAmbiguous RowState = "ambiguous"
)

// Result holds the merged output set and the audit report of one
// reconciliation pass.
type Result struct {
	// Output contains one row per authoritative input row, in input order:
	// merged where matched, passed through unchanged otherwise.
	Output []cards.Record
	// Columns is the output header order: the authoritative dataset's
	// original order with new columns appended.
	Columns []string
	// States records the terminal state of each authoritative row.
	States []RowState
	// Unused lists reference records never consumed by a match; candidates
	// for manual addition, never auto-inserted.
	Unused []cards.Record
	Report *Report
}

// Reconcile classifies every authoritative row against the reference
// dataset. Candidates are bucketed by primary identity key; scoring
// discriminates only among candidates sharing a key. Ambiguity is an
// expected, reportable outcome, never an error. The context carries the
// run's annotated logger.
func (r *Reconciler) Reconcile(ctx context.Context, auth, ref *Dataset) *Result {
	index := buildIndex(ref)
	used := make([]bool, len(ref.Records))

	result := &Result{
		Output: make([]cards.Record, 0, len(auth.Records)),
		States: make([]RowState, 0, len(auth.Records)),
	}
	report := newReport(auth, ref, r.Policy, r.SampleLimit)

	for _, rec := range auth.Records {
		state := r.reconcileRow(rec, index, used, result, report)
		result.States = append(result.States, state)
	}

	for i, refRec := range ref.Records {
		if !used[i] {
			result.Unused = append(result.Unused, refRec)
			report.addUnusedSample(refRec)
		}
	}

	result.Columns = outputColumns(auth.Columns, result.Output)
	report.finish(result)
	result.Report = report

	logging.Ctx(ctx).Info().
		Str("old", auth.Path).
		Str("new", ref.Path).
		Int("matched", report.Results.Matched).
		Int("unmatched", report.Results.Unmatched).
		Int("ambiguous", report.Results.Ambiguous).
		Int("unused_reference", len(result.Unused)).
		Msg("Reconciliation complete")
	return result
}

// reconcileRow runs the per-row state machine:
// unprocessed -> {matched | unmatched | ambiguous}.
func (r *Reconciler) reconcileRow(rec cards.Record, index *candidateIndex, used []bool, result *Result, report *Report) RowState {
	indices, candidates := index.lookup(keyFor(rec), used)

	if len(candidates) == 0 {
		result.Output = append(result.Output, rec.Clone())
		report.addUnmatchedSample(rec)
		return StateUnmatched
	}

	sel := r.Scorer.Best(rec, candidates)
	switch {
	case sel.Decision == match.Accepted:
		used[indices[sel.Best]] = true
		result.Output = append(result.Output, merge.Merge(rec, candidates[sel.Best], r.Policy))
		report.Results.Matched++
		return StateMatched
	case len(candidates) == 1:
		// a low-confidence single candidate is not forced
		result.Output = append(result.Output, rec.Clone())
		report.addUnmatchedSample(rec)
		return StateUnmatched
	default:
		result.Output = append(result.Output, rec.Clone())
		report.addAmbiguousSample(rec, candidates, sel)
		return StateAmbiguous
	}
}

// candidateIndex maps primary identity keys to reference record positions.
// It is built fresh per run and discarded with the result; it is never
// persisted.
type candidateIndex struct {
	byKey   map[string][]int
	records []cards.Record
}

func buildIndex(ref *Dataset) *candidateIndex {
	idx := &candidateIndex{
		byKey:   make(map[string][]int, len(ref.Records)),
		records: ref.Records,
	}
	for i, rec := range ref.Records {
		key := keyFor(rec)
		idx.byKey[key] = append(idx.byKey[key], i)
	}
	return idx
}

// lookup returns the not-yet-used candidates for a key, preserving input
// order so tie-breaks stay deterministic.
func (idx *candidateIndex) lookup(key string, used []bool) ([]int, []cards.Record) {
	var indices []int
	var recs []cards.Record
	for _, i := range idx.byKey[key] {
		if used[i] {
			continue
		}
		indices = append(indices, i)
		recs = append(recs, idx.records[i])
	}
	return indices, recs
}
