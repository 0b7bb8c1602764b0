package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradejournal/internal/adapters/yamlfile"
	"tradejournal/internal/utils"
)

func newImportCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import strategies, capital and trades from a YAML snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := yamlfile.Load(args[0])
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				ctx := cmd.Context()
				if doc.Capital != "" {
					if err := rt.svc.SetCapital(ctx, doc.Capital); err != nil {
						return err
					}
				}
				res, err := rt.svc.Import(ctx, doc.Trades, doc.Strategies)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d trades, %d strategies (%d skipped)\n",
					res.Trades, res.Strategies, res.Skipped)
				return nil
			})
		},
	}
}

func newExportCmd(opts *RootOptions) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal as a YAML snapshot or the closed history as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "csv" {
				return fmt.Errorf("invalid --format %q: want yaml or csv", format)
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				if format == "csv" {
					views := rt.svc.ClosedTrades()
					if outPath != "" {
						return utils.WriteClosedTradesCSVFile(views, outPath)
					}
					return utils.WriteClosedTradesCSV(cmd.OutOrStdout(), views)
				}

				doc, err := snapshot(cmd, rt)
				if err != nil {
					return err
				}
				if outPath != "" {
					return yamlfile.Save(outPath, doc)
				}
				return yamlfile.Write(cmd.OutOrStdout(), doc)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml|csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func snapshot(cmd *cobra.Command, rt *runtime) (*yamlfile.Document, error) {
	ctx := cmd.Context()
	strategies, err := rt.svc.Strategies(ctx)
	if err != nil {
		return nil, err
	}
	report, err := rt.svc.Capital(ctx)
	if err != nil {
		return nil, err
	}
	return &yamlfile.Document{
		Version:    yamlfile.CurrentVersion,
		Capital:    report.Capital,
		Strategies: strategies,
		Trades:     rt.svc.Trades(),
	}, nil
}
