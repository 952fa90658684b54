package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shoeboxhq/shoebox/internal/config"
	"github.com/shoeboxhq/shoebox/pkg/errors"
	"github.com/shoeboxhq/shoebox/pkg/logging"
	"github.com/shoeboxhq/shoebox/pkg/reconcile"
	"github.com/shoeboxhq/shoebox/pkg/tabular"
)

var (
	dedupeOutput string
	dedupeReport string
)

// dedupeCmd collapses exact duplicate inventory lines within one dataset.
var dedupeCmd = &cobra.Command{
	Use:   "dedupe <input>",
	Short: "Collapse exact duplicate rows within one inventory",
	Long: `Dedupe groups rows by strict duplicate identity, the literal same
physical card recorded more than once, and collapses each group into a
single row. Quantities are summed so inventory counts are conserved; the
most complete row in a group anchors the merge.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := reconcile.Load(args[0], loadOptions())
		if err != nil {
			if errors.IsNotFound(err) {
				return errors.NewValidationError("input", args[0], "file not found")
			}
			return err
		}

		policy, err := runPolicy()
		if err != nil {
			return err
		}

		ctx := logging.WithOperation(cmd.Context(), "dedupe")
		ctx = logging.WithDataset(ctx, args[0])

		result := reconcile.Dedupe(ctx, ds, policy.Merge, viper.GetInt(config.KeySampleLimit))
		if err := tabular.WriteFile(dedupeOutput, result.Columns, recordMaps(result.Output), ','); err != nil {
			return err
		}
		if dedupeReport != "" {
			if err := result.Report.WriteJSON(dedupeReport); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	dedupeCmd.Flags().StringVarP(&dedupeOutput, "output", "o", "", "deduplicated output file (required)")
	dedupeCmd.Flags().StringVar(&dedupeReport, "report", "", "JSON audit report file")
	_ = dedupeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(dedupeCmd)
}
