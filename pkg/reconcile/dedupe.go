package reconcile

import (
	"context"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/logging"
	"github.com/shoeboxhq/shoebox/pkg/merge"
)

// DedupeResult is the outcome of collapsing exact duplicates in one dataset.
type DedupeResult struct {
	Output  []cards.Record
	Columns []string
	// Groups counts strict-duplicate groups that actually collapsed rows.
	Groups int
	Report *Report
}

// Dedupe collapses records sharing a strict duplicate key: the literal same
// physical card recorded twice. Quantities are summed so inventory counts
// are conserved; the most complete row in each group anchors the merge.
// This is the same pipeline as reconciliation minus fuzzy scoring.
func Dedupe(ctx context.Context, ds *Dataset, policy merge.Policy, sampleLimit int) *DedupeResult {
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}

	groups := make(map[string][]int, len(ds.Records))
	var order []string
	for i, rec := range ds.Records {
		key := strictKeyFor(rec)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	result := &DedupeResult{}
	report := newReport(ds, nil, policy, sampleLimit)

	for _, key := range order {
		indices := groups[key]
		if len(indices) == 1 {
			result.Output = append(result.Output, ds.Records[indices[0]].Clone())
			continue
		}

		result.Groups++
		base := bestOfGroup(ds.Records, indices)
		merged := ds.Records[base].Clone()
		for _, i := range indices {
			if i == base {
				continue
			}
			merged = merge.MergeStrict(merged, ds.Records[i], policy)
		}
		result.Output = append(result.Output, merged)
		report.addDuplicateSample(ds.Records[indices[0]], len(indices))
	}

	result.Columns = outputColumns(ds.Columns, result.Output)
	report.Results.DuplicateGroups = result.Groups
	report.Results.OutputRows = len(result.Output)
	report.Results.OutputColumns = len(result.Columns)
	result.Report = report

	logging.Ctx(ctx).Info().
		Str("input", ds.Path).
		Int("rows_in", len(ds.Records)).
		Int("rows_out", len(result.Output)).
		Int("duplicate_groups", result.Groups).
		Msg("Dedupe complete")
	return result
}

// bestOfGroup picks the anchor row for a duplicate group: the highest
// completeness score wins, first in input order on ties.
func bestOfGroup(records []cards.Record, indices []int) int {
	best := indices[0]
	bestScore := records[best].Completeness()
	for _, i := range indices[1:] {
		if score := records[i].Completeness(); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
