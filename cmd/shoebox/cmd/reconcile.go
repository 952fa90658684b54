package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shoeboxhq/shoebox/internal/config"
	"github.com/shoeboxhq/shoebox/internal/inputs"
	"github.com/shoeboxhq/shoebox/pkg/errors"
	"github.com/shoeboxhq/shoebox/pkg/logging"
	"github.com/shoeboxhq/shoebox/pkg/merge"
	"github.com/shoeboxhq/shoebox/pkg/reconcile"
	"github.com/shoeboxhq/shoebox/pkg/tabular"
)

var (
	reconcileOld        []string
	reconcileNew        []string
	reconcileOutput     string
	reconcileReport     string
	reconcileFillBlanks bool
	reconcileValues     string
)

// reconcileCmd matches the authoritative inventory against a reference
// export and merges what it can defend.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an authoritative inventory against a reference export",
	Long: `Reconcile classifies every row of the authoritative (--old) dataset
against the reference (--new) dataset: matched rows are merged under the
precedence policy, unmatched and ambiguous rows pass through unchanged
and are listed in the report for manual review.

--old and --new accept multiple candidate paths; the first existing file
wins. Reference rows never consumed by a match are reported, never
inserted into the output.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		oldPath, ok := inputs.Choose(reconcileOld, fileExists)
		if !ok {
			return errors.NewValidationError("old", reconcileOld, "no candidate input file exists")
		}
		newPath, ok := inputs.Choose(reconcileNew, fileExists)
		if !ok {
			return errors.NewValidationError("new", reconcileNew, "no candidate input file exists")
		}

		policy, err := runPolicy()
		if err != nil {
			return err
		}
		if reconcileFillBlanks {
			policy.Merge.FillBlanks = true
		}
		if reconcileValues != "" {
			policy.Merge.Values, err = merge.ParseValueStrategy(reconcileValues)
			if err != nil {
				return err
			}
		}

		auth, err := reconcile.Load(oldPath, loadOptions())
		if err != nil {
			return err
		}
		ref, err := reconcile.Load(newPath, loadOptions())
		if err != nil {
			return err
		}

		ctx := logging.WithOperation(cmd.Context(), "reconcile")
		ctx = logging.WithDataset(ctx, oldPath)

		r := reconcile.NewReconciler(policy.Scorer(), policy.Merge)
		r.SampleLimit = viper.GetInt(config.KeySampleLimit)
		result := r.Reconcile(ctx, auth, ref)

		if err := tabular.WriteFile(reconcileOutput, result.Columns, recordMaps(result.Output), ','); err != nil {
			return err
		}
		if reconcileReport != "" {
			if err := result.Report.WriteJSON(reconcileReport); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringSliceVar(&reconcileOld, "old", nil, "authoritative dataset; repeatable, first existing wins (required)")
	reconcileCmd.Flags().StringSliceVar(&reconcileNew, "new", nil, "reference dataset; repeatable, first existing wins (required)")
	reconcileCmd.Flags().StringVarP(&reconcileOutput, "output", "o", "", "merged output file (required)")
	reconcileCmd.Flags().StringVar(&reconcileReport, "report", "", "JSON audit report file")
	reconcileCmd.Flags().BoolVar(&reconcileFillBlanks, "fill-blanks", false, "fill blank authoritative fields from the reference record")
	reconcileCmd.Flags().StringVar(&reconcileValues, "merge-values", "", "value/purchase_price strategy: keep_old, max, min or newest")
	_ = reconcileCmd.MarkFlagRequired("old")
	_ = reconcileCmd.MarkFlagRequired("new")
	_ = reconcileCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(reconcileCmd)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
