package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/match"
	"github.com/shoeboxhq/shoebox/pkg/merge"
	"github.com/shoeboxhq/shoebox/pkg/tabular"
)

func dataset(t *testing.T, path, csv string) *Dataset {
	t.Helper()
	return FromTable(path, tabular.Parse(csv), LoadOptions{})
}

func TestReconcileMatches(t *testing.T) {
	auth := dataset(t, "old.csv",
		"year,set,card_number,player,value\n2024,Topps,7,Messi,10\n")
	ref := dataset(t, "new.csv",
		"year,set,card_number,player,value\n2024,Topps,7,Messi,25\n")

	r := NewReconciler(nil, merge.DefaultPolicy())
	result := r.Reconcile(context.Background(), auth, ref)

	require.Len(t, result.Output, 1)
	assert.Equal(t, []RowState{StateMatched}, result.States)
	assert.Equal(t, 1, result.Report.Results.Matched)
	assert.Empty(t, result.Unused)
	// keep_old preserved the authoritative value, shadow kept the other
	assert.Equal(t, "10", result.Output[0].Get(cards.FieldValue))
	assert.Equal(t, "25", result.Output[0].Get(merge.ShadowPrefix+cards.FieldValue))
}

func TestReconcileUnmatchedPassesThroughUnchanged(t *testing.T) {
	auth := dataset(t, "old.csv",
		"year,set,card_number,player\n2024,Topps,7,Messi\n")
	ref := dataset(t, "new.csv",
		"year,set,card_number,player\n1989,Upper Deck,1,Griffey\n")

	r := NewReconciler(nil, merge.DefaultPolicy())
	result := r.Reconcile(context.Background(), auth, ref)

	assert.Equal(t, []RowState{StateUnmatched}, result.States)
	assert.Equal(t, auth.Records[0], result.Output[0])
	assert.Equal(t, 1, result.Report.Results.Unmatched)
	// the unused reference row is reported, never auto-inserted
	require.Len(t, result.Unused, 1)
	assert.Len(t, result.Output, 1)
	assert.Len(t, result.Report.Samples.UnusedReferenceRows, 1)
}

func TestReconcileAmbiguousOnTiedCandidates(t *testing.T) {
	auth := dataset(t, "old.csv",
		"year,set,card_number,player\n2024,Topps,7,Messi\n")
	// two parallels share the primary key and score identically
	ref := dataset(t, "new.csv",
		"year,set,card_number,player,parallel\n2024,Topps,7,Messi,Silver\n2024,Topps,7,Messi,Gold\n")

	r := NewReconciler(nil, merge.DefaultPolicy())
	result := r.Reconcile(context.Background(), auth, ref)

	assert.Equal(t, []RowState{StateAmbiguous}, result.States)
	assert.Equal(t, auth.Records[0], result.Output[0])
	require.Len(t, result.Report.Samples.AmbiguousRows, 1)
	sample := result.Report.Samples.AmbiguousRows[0]
	assert.Len(t, sample.Candidates, 2)
	assert.Equal(t, sample.TopScore, sample.RunnerUpScore)
	// neither reference record was consumed
	assert.Len(t, result.Unused, 2)
}

func TestReconcileLowConfidenceSingleCandidateNotForced(t *testing.T) {
	auth := dataset(t, "old.csv",
		"player,set,card_number,year\nMessi,Topps,7,2024\n")
	ref := dataset(t, "new.csv",
		"player,set,card_number,year\nMessi,Topps,7,2024\n")

	// a single below-floor candidate stays unmatched
	scorer := match.NewScorer()
	scorer.Floor = 100
	r := NewReconciler(scorer, merge.DefaultPolicy())

	result := r.Reconcile(context.Background(), auth, ref)
	assert.Equal(t, []RowState{StateUnmatched}, result.States)
	assert.Len(t, result.Unused, 1)
}

func TestReconcileFloorAndGapScenario(t *testing.T) {
	// Three reference records share the primary key; two tie at the floor
	// and the third leads by less than the gap. The row must be ambiguous.
	scorer := match.NewScorer()
	scorer.Floor = 8
	scorer.Gap = 1

	auth := dataset(t, "old.csv",
		"player,set,card_number,year,team\nMessi,Topps,7,2024,Inter Miami\n")
	ref := dataset(t, "new.csv",
		"player,set,card_number,year,team\n"+
			"Messi,Topps,7,2024,\n"+ // 4+2.5+2.5+1.5 = 10.5
			"Messi,Topps,7,2024,\n"+ // ties at 10.5
			"Messi,Topps,7,2024,Miami\n") // 10.5 + 0.5 partial team = 11

	r := NewReconciler(scorer, merge.DefaultPolicy())
	result := r.Reconcile(context.Background(), auth, ref)
	assert.Equal(t, []RowState{StateAmbiguous}, result.States)
}

func TestReconcileColumnsPreserveAuthoritativeOrder(t *testing.T) {
	auth := dataset(t, "old.csv",
		"player,year,set,card_number\nMessi,2024,Topps,7\n")
	ref := dataset(t, "new.csv",
		"player,year,set,card_number,grade\nMessi,2024,Topps,7,PSA 9\n")

	policy := merge.DefaultPolicy()
	policy.FillBlanks = true
	r := NewReconciler(nil, policy)
	result := r.Reconcile(context.Background(), auth, ref)

	require.Equal(t, []RowState{StateMatched}, result.States)
	// authoritative order first, new column appended
	assert.Equal(t, []string{"player", "year", "set", "card_number", "grade", "quantity"}, result.Columns)
	assert.Equal(t, "PSA 9", result.Output[0].Get(cards.FieldGrade))
}

func TestReconcileReportCounts(t *testing.T) {
	auth := dataset(t, "old.csv",
		"player,set,card_number,year\nMessi,Topps,7,2024\nGriffey,Upper Deck,1,1989\n")
	ref := dataset(t, "new.csv",
		"player,set,card_number,year\nMessi,Topps,7,2024\n")

	r := NewReconciler(nil, merge.DefaultPolicy())
	result := r.Reconcile(context.Background(), auth, ref)

	rep := result.Report
	assert.Equal(t, 1, rep.Results.Matched)
	assert.Equal(t, 1, rep.Results.Unmatched)
	assert.Equal(t, 0, rep.Results.Ambiguous)
	assert.Equal(t, 2, rep.Results.OutputRows)
	assert.Equal(t, len(result.Columns), rep.Results.OutputColumns)
	assert.Equal(t, []string{"old.csv", "new.csv"}, rep.Inputs.Paths)
	assert.Equal(t, []int{2, 1}, rep.Inputs.RowCounts)
}

func TestDedupeSumsQuantities(t *testing.T) {
	ds := dataset(t, "inv.csv",
		"player,set,card_number,year,quantity\n"+
			"Messi,Topps,7,2024,1\n"+
			"Messi,Topps,7,2024,2\n"+
			"Haaland,Prizm,221,2023,1\n")

	result := Dedupe(context.Background(), ds, merge.DefaultPolicy(), 0)
	require.Len(t, result.Output, 2)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 3, result.Output[0].Quantity())
	assert.Equal(t, 1, result.Output[1].Quantity())
}

func TestDedupeQuantityConservation(t *testing.T) {
	ds := dataset(t, "inv.csv",
		"player,set,card_number,year,quantity\n"+
			"Messi,Topps,7,2024,2\n"+
			"Messi,Topps,7,2024,5\n"+
			"Messi,Topps,7,2024,\n") // blank defaults to 1

	before := 0
	for _, rec := range ds.Records {
		before += rec.Quantity()
	}

	result := Dedupe(context.Background(), ds, merge.DefaultPolicy(), 0)
	require.Len(t, result.Output, 1)
	assert.Equal(t, before, result.Output[0].Quantity())
}

func TestDedupeGradedCopiesStayDistinct(t *testing.T) {
	ds := dataset(t, "inv.csv",
		"player,set,card_number,year,grade\n"+
			"Messi,Topps,7,2024,\n"+
			"Messi,Topps,7,2024,PSA 9\n")

	result := Dedupe(context.Background(), ds, merge.DefaultPolicy(), 0)
	// raw and graded copies are distinct inventory lines
	assert.Len(t, result.Output, 2)
	assert.Equal(t, 0, result.Groups)
}

func TestDedupeMostCompleteRowAnchors(t *testing.T) {
	ds := dataset(t, "inv.csv",
		"player,set,card_number,year,value,image\n"+
			"Messi,Topps,7,2024,,\n"+
			"Messi,Topps,7,2024,40,front.jpg\n")

	result := Dedupe(context.Background(), ds, merge.DefaultPolicy(), 0)
	require.Len(t, result.Output, 1)
	assert.Equal(t, "40", result.Output[0].Get(cards.FieldValue))
}

func TestNormalizeIdempotent(t *testing.T) {
	ds := dataset(t, "raw.csv",
		"Title,Player Name,Set,Card #,QTY,Paid,Images\n"+
			"2023-24 Panini Prizm #221 Haaland,Haaland,,221,2,\"$1,250.00\",a.jpg | b.jpg\n"+
			",José Ramírez,Topps Chrome,35,,,\n")

	cols1, rows1, err := Normalize(ds)
	require.NoError(t, err)

	var buf1 bytes.Buffer
	require.NoError(t, tabular.Write(&buf1, cols1, recordsToMaps(rows1), ','))

	second := dataset(t, "pass2.csv", buf1.String())
	cols2, rows2, err := Normalize(second)
	require.NoError(t, err)

	var buf2 bytes.Buffer
	require.NoError(t, tabular.Write(&buf2, cols2, recordsToMaps(rows2), ','))

	assert.Equal(t, buf1.String(), buf2.String())
}

func TestNormalizeDerivesStableIDs(t *testing.T) {
	csv := "player,set,card_number,year\nMessi,Topps,7,2024\n"
	_, rows1, err := Normalize(dataset(t, "a.csv", csv))
	require.NoError(t, err)
	_, rows2, err := Normalize(dataset(t, "b.csv", csv))
	require.NoError(t, err)
	assert.Equal(t, rows1[0].Get(cards.FieldID), rows2[0].Get(cards.FieldID))
	assert.NotEmpty(t, rows1[0].Get(cards.FieldID))
}

func TestNormalizeEmptyDataset(t *testing.T) {
	_, _, err := Normalize(dataset(t, "empty.csv", ""))
	assert.Error(t, err)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load("/nonexistent/inventory.csv", LoadOptions{})
	assert.Error(t, err)
}

func TestReportSamplesAreBounded(t *testing.T) {
	var authRows, refRows bytes.Buffer
	authRows.WriteString("player,set,card_number,year\n")
	refRows.WriteString("player,set,card_number,year\n")
	for i := 0; i < 10; i++ {
		authRows.WriteString("Player" + string(rune('A'+i)) + ",Topps,1,2024\n")
	}

	auth := dataset(t, "old.csv", authRows.String())
	ref := dataset(t, "new.csv", refRows.String())

	r := NewReconciler(nil, merge.DefaultPolicy())
	r.SampleLimit = 3
	result := r.Reconcile(context.Background(), auth, ref)

	assert.Equal(t, 10, result.Report.Results.Unmatched)
	assert.Len(t, result.Report.Samples.UnmatchedRows, 3)
}

func TestReportWriteJSON(t *testing.T) {
	auth := dataset(t, "old.csv",
		"player,set,card_number,year\nMessi,Topps,7,2024\n")
	ref := dataset(t, "new.csv",
		"player,set,card_number,year\nMessi,Topps,7,2024\n")

	result := NewReconciler(nil, merge.DefaultPolicy()).Reconcile(context.Background(), auth, ref)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, result.Report.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "inputs")
	assert.Contains(t, decoded, "results")
	assert.Contains(t, decoded, "samples")

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func recordsToMaps(recs []cards.Record) []map[string]string {
	out := make([]map[string]string, len(recs))
	for i, r := range recs {
		out[i] = map[string]string(r)
	}
	return out
}
