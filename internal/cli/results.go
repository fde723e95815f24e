package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/dataset"
)

var resultTables = []string{"order", "segmentation", "strategies", "leakage"}

func newResultsCmd(a *app) *cobra.Command {
	var (
		score    float64
		size     int
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "results [order|segmentation|strategies|leakage]",
		Short: "Show the measured accuracy figures",
		Long: `Show the reference results, all tables by default, or look a single row up
by tau score, segment size or strategy.

Examples:
  ordermatters results
  ordermatters results strategies
  ordermatters results --score 0.4
  ordermatters results --size 20
  ordermatters results --strategy callgraph`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: resultTables,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			flags := cmd.Flags()

			switch {
			case flags.Changed("score"):
				row, ok := a.data.NearestOrderBias(score)
				if !ok {
					return fmt.Errorf("no order bias results")
				}
				printOrderBias(out, []dataset.OrderBiasRow{row})
				return nil
			case flags.Changed("size"):
				row, ok := a.data.BySegmentSize(size)
				if !ok {
					return fmt.Errorf("no results for segment size %d", size)
				}
				printSegmentation(out, []dataset.SegmentationRow{row})
				return nil
			case flags.Changed("strategy"):
				row, ok := a.data.ByStrategy(strategy)
				if !ok {
					return fmt.Errorf("no results for strategy %q", strategy)
				}
				printStrategies(out, []dataset.StrategyRow{row})
				return nil
			}

			tables := resultTables
			if len(args) == 1 {
				tables = args
			}
			for i, table := range tables {
				if i > 0 {
					fmt.Fprintln(out)
				}
				switch table {
				case "order":
					printOrderBias(out, a.data.OrderBias)
				case "segmentation":
					printSegmentation(out, a.data.Segmentation)
				case "strategies":
					printStrategies(out, a.data.StrategiesByTop1())
				case "leakage":
					printLeakage(out, a.data)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&score, "score", 0, "nearest order-bias row for a tau score")
	cmd.Flags().IntVar(&size, "size", 0, "segmentation row for a segment size")
	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy row by key or technique")
	return cmd
}

func printOrderBias(out io.Writer, rows []dataset.OrderBiasRow) {
	fmt.Fprintf(out, "Order Bias\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "%-14s %5s %6s %6s %6s %6s\n", "ORDERING", "TAU", "TOP1", "TOP3", "TOP5", "TOP10")
	for _, r := range rows {
		fmt.Fprintf(out, "%-14s %5.1f %6.1f %6.1f %6.1f %6.1f\n", r.Label, r.Tau, r.Top1, r.Top3, r.Top5, r.Top10)
	}
}

func printSegmentation(out io.Writer, rows []dataset.SegmentationRow) {
	fmt.Fprintf(out, "Segmentation\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "%-6s %8s %8s %6s\n", "SIZE", "PERFECT", "WORST", "GAP")
	for _, r := range rows {
		fmt.Fprintf(out, "%-6d %8.1f %8.1f %6.1f\n", r.SegmentSize, r.PerfectTop1, r.WorstTop1, r.Gap())
	}
}

func printStrategies(out io.Writer, rows []dataset.StrategyRow) {
	fmt.Fprintf(out, "Ordering Strategies\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "%-22s %6s  %s\n", "TECHNIQUE", "TOP1", "CATEGORY")
	for _, r := range rows {
		fmt.Fprintf(out, "%-22s %6.1f  %s\n", r.Technique, r.Top1, r.Category)
	}
}

func printLeakage(out io.Writer, data *dataset.Dataset) {
	drops := data.LeakageDrop()
	contexts := make([]string, 0, len(drops))
	for c := range drops {
		contexts = append(contexts, c)
	}
	sort.Strings(contexts)

	fmt.Fprintf(out, "Memorization\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "%-24s %9s %8s %6s\n", "CONTEXT", "ORIGINAL", "RENAMED", "DROP")
	for _, r := range data.Leakage {
		fmt.Fprintf(out, "%-24s %9.1f %8.1f %6.1f\n", r.Context, r.Original, r.Renamed, drops[r.Context])
	}
}
