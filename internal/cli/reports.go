package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradejournal/internal/analytics"
	"tradejournal/internal/domain"
)

func newTradesCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "trades [open|closed]",
		Short:     "List open or closed trades",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"open", "closed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "open"
			if len(args) == 1 {
				which = args[0]
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				out := cmd.OutOrStdout()
				if which == "closed" {
					return printClosed(out, rt)
				}
				return printOpen(out, rt)
			})
		},
	}
}

func printOpen(out io.Writer, rt *runtime) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tSIDE\tOPENED\tENTRY\tQTY\tREMAINING\tREALIZED")
	for _, v := range rt.svc.OpenTrades() {
		t := v.Trade
		remaining := formatQty(v.RemainingQuantity)
		if v.OverSold {
			remaining += " (over-sold)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\t%s\t%s\n",
			t.ID, t.SymbolName, t.PositionType, t.OpenDate, t.OpenTime,
			money(t.EntryPrice), formatQty(t.Quantity), remaining, money(v.PartialCloseTotal))
	}
	return tw.Flush()
}

func printClosed(out io.Writer, rt *runtime) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tSIDE\tCLOSED\tQTY\tAVG EXIT\tRESULT")
	for _, v := range rt.svc.ClosedTrades() {
		t := v.Trade
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\t%s\n",
			t.ID, t.SymbolName, t.PositionType, t.CloseDate, t.CloseTime,
			formatQty(v.TotalQuantity), money(v.AverageExitPrice), money(v.TotalResult))
	}
	fmt.Fprintf(tw, "\t\t\t\t\tTOTAL\t%s\n", money(rt.svc.HistoryTotal()))
	return tw.Flush()
}

func newSummaryCmd(opts *RootOptions) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Realized results per day, month, year or in total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := domain.ParseGroupBy(groupBy)
			if !ok {
				return fmt.Errorf("invalid --group-by %q: want day, month, year or total", groupBy)
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				return printBuckets(cmd.OutOrStdout(), rt.svc.Summary(g))
			})
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", string(domain.GroupByMonth), "day|month|year|total")
	return cmd
}

func printBuckets(out io.Writer, buckets map[string]float64) error {
	keys := sortedBucketKeys(buckets)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tRESULT")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, money(buckets[k]))
	}
	return tw.Flush()
}

// sortedBucketKeys orders bucket keys chronologically; unparseable keys go last.
func sortedBucketKeys(buckets map[string]float64) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ti, okI := analytics.ParseBucketKey(keys[i])
		tj, okJ := analytics.ParseBucketKey(keys[j])
		if okI != okJ {
			return okI
		}
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return keys[i] < keys[j]
	})
	return keys
}

func newWinLossCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "winloss",
		Short: "Per-day count of winning and losing closes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				days := rt.svc.WinLoss()
				counts := make(map[string]float64, len(days))
				for k := range days {
					counts[k] = 0
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DAY\tCLOSES\tWIN\tLOST")
				for _, k := range sortedBucketKeys(counts) {
					s := days[k]
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", k, s.Result, s.Win, s.Lost)
				}
				return tw.Flush()
			})
		},
	}
}

func newStatsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Performance metrics over every realized result, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				stats, err := rt.svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatQty(v float64) string {
	return decimal.NewFromFloat(v).String()
}
