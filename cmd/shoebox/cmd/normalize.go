package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shoeboxhq/shoebox/internal/config"
	"github.com/shoeboxhq/shoebox/pkg/cards"
	"github.com/shoeboxhq/shoebox/pkg/errors"
	"github.com/shoeboxhq/shoebox/pkg/logging"
	"github.com/shoeboxhq/shoebox/pkg/reconcile"
	"github.com/shoeboxhq/shoebox/pkg/tabular"
)

var normalizeOutput string

// normalizeCmd rewrites one export into the canonical schema.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <input>",
	Short: "Rewrite an inventory export into the canonical schema",
	Long: `Normalize parses a delimited inventory export, resolves header
aliases onto the canonical field set, coerces field values, backfills
identity fields from listing titles, and writes a canonical CSV.

Running normalize on its own output reproduces it unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := reconcile.Load(args[0], loadOptions())
		if err != nil {
			if errors.IsNotFound(err) {
				return errors.NewValidationError("input", args[0], "file not found")
			}
			return err
		}

		columns, rows, err := reconcile.Normalize(ds)
		if err != nil {
			return err
		}

		if err := tabular.WriteFile(normalizeOutput, columns, recordMaps(rows), ','); err != nil {
			return err
		}

		ctx := logging.WithOperation(cmd.Context(), "normalize")
		ctx = logging.WithDataset(ctx, args[0])
		logging.Ctx(ctx).Info().
			Str("output", normalizeOutput).
			Int("rows", len(rows)).
			Msg("Normalize complete")
		return nil
	},
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "output file (required)")
	_ = normalizeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(normalizeCmd)
}

// loadOptions builds dataset load options from configuration.
func loadOptions() reconcile.LoadOptions {
	return reconcile.LoadOptions{
		ImageBaseURL: viper.GetString(config.KeyImageBaseURL),
	}
}

func recordMaps(recs []cards.Record) []map[string]string {
	out := make([]map[string]string, len(recs))
	for i, r := range recs {
		out[i] = map[string]string(r)
	}
	return out
}
