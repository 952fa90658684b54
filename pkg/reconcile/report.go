package reconcile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/errors"
	"github.com/shoeboxhq/shoebox/pkg/match"
	"github.com/shoeboxhq/shoebox/pkg/merge"
)

// Report is the structured audit artifact written alongside the merged
// output. It is derived and disposable, never a source of truth.
type Report struct {
	Inputs  ReportInputs  `json:"inputs"`
	Results ReportResults `json:"results"`
	Samples ReportSamples `json:"samples"`

	limit int
}

// ReportInputs describes the run's inputs and policy flags.
type ReportInputs struct {
	Paths       []string `json:"paths"`
	RowCounts   []int    `json:"row_counts"`
	FillBlanks  bool     `json:"fill_blanks"`
	MergeValues string   `json:"merge_values"`
}

// ReportResults carries the aggregate counts.
type ReportResults struct {
	Matched         int `json:"matched"`
	Unmatched       int `json:"unmatched"`
	Ambiguous       int `json:"ambiguous"`
	DuplicateGroups int `json:"duplicate_groups,omitempty"`
	OutputRows      int `json:"output_rows"`
	OutputColumns   int `json:"output_columns"`
}

// AmbiguousSample records an ambiguous row and its top two candidates for
// manual review.
type AmbiguousSample struct {
	Row           cards.Record   `json:"row"`
	Candidates    []cards.Record `json:"candidates"`
	TopScore      float64        `json:"top_score"`
	RunnerUpScore float64        `json:"runner_up_score"`
}

// DuplicateSample records one collapsed duplicate group.
type DuplicateSample struct {
	Row  cards.Record `json:"row"`
	Size int          `json:"size"`
}

// ReportSamples are bounded excerpts of each category; full listings would
// defeat the purpose of a small audit file.
type ReportSamples struct {
	UnmatchedRows       []cards.Record    `json:"unmatched_rows,omitempty"`
	AmbiguousRows       []AmbiguousSample `json:"ambiguous_rows,omitempty"`
	UnusedReferenceRows []cards.Record    `json:"unused_reference_rows,omitempty"`
	DuplicateGroups     []DuplicateSample `json:"duplicate_groups,omitempty"`
}

func newReport(auth, ref *Dataset, policy merge.Policy, limit int) *Report {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	r := &Report{limit: limit}
	r.Inputs.FillBlanks = policy.FillBlanks
	r.Inputs.MergeValues = string(policy.Values)
	if r.Inputs.MergeValues == "" {
		r.Inputs.MergeValues = string(merge.KeepOld)
	}
	if auth != nil {
		r.Inputs.Paths = append(r.Inputs.Paths, auth.Path)
		r.Inputs.RowCounts = append(r.Inputs.RowCounts, len(auth.Records))
	}
	if ref != nil {
		r.Inputs.Paths = append(r.Inputs.Paths, ref.Path)
		r.Inputs.RowCounts = append(r.Inputs.RowCounts, len(ref.Records))
	}
	return r
}

func (r *Report) addUnmatchedSample(rec cards.Record) {
	r.Results.Unmatched++
	if len(r.Samples.UnmatchedRows) < r.limit {
		r.Samples.UnmatchedRows = append(r.Samples.UnmatchedRows, rec.Clone())
	}
}

func (r *Report) addAmbiguousSample(rec cards.Record, candidates []cards.Record, sel match.Selection) {
	r.Results.Ambiguous++
	if len(r.Samples.AmbiguousRows) >= r.limit {
		return
	}
	sample := AmbiguousSample{
		Row:           rec.Clone(),
		TopScore:      sel.Score,
		RunnerUpScore: sel.RunnerUpScore,
	}
	if sel.Best >= 0 {
		sample.Candidates = append(sample.Candidates, candidates[sel.Best].Clone())
	}
	if sel.RunnerUp >= 0 {
		sample.Candidates = append(sample.Candidates, candidates[sel.RunnerUp].Clone())
	}
	r.Samples.AmbiguousRows = append(r.Samples.AmbiguousRows, sample)
}

func (r *Report) addUnusedSample(rec cards.Record) {
	if len(r.Samples.UnusedReferenceRows) < r.limit {
		r.Samples.UnusedReferenceRows = append(r.Samples.UnusedReferenceRows, rec.Clone())
	}
}

func (r *Report) addDuplicateSample(rec cards.Record, size int) {
	if len(r.Samples.DuplicateGroups) < r.limit {
		r.Samples.DuplicateGroups = append(r.Samples.DuplicateGroups, DuplicateSample{Row: rec.Clone(), Size: size})
	}
}

func (r *Report) finish(result *Result) {
	r.Results.OutputRows = len(result.Output)
	r.Results.OutputColumns = len(result.Columns)
}

// WriteJSON writes the report atomically next to the merged output.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
