package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

func newRankCmd(a *app) *cobra.Command {
	var (
		name string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the strategy entities with an ordering strategy",
		Long: `Rank the fixed entity set with an ordering strategy and report where the
faulty method lands.

Strategies: unsorted, by-size-desc (size, loc), by-distance-asc (distance,
callgraph), by-learned-score-desc (learned, depgraph).

Examples:
  ordermatters rank --strategy size
  ordermatters rank --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if all {
				printRankTable(out, a.engine.RankAll())
				return nil
			}

			s, err := strategy.Parse(name)
			if err != nil {
				return err
			}
			res := a.engine.Rank(nil, s)

			fmt.Fprintf(out, "Strategy: %s\n", res.Strategy)
			fmt.Fprintf(out, "  %s\n\n", res.Strategy.Description())
			for i, e := range res.Ranked {
				fmt.Fprintf(out, "  %d. %-20s size %4d  distance %d  learned %.2f\n",
					i+1, e.DisplayName(), e.Size, e.Distance, e.LearnedScore)
			}
			fmt.Fprintf(out, "\nTarget rank: %d of %d\n", res.TargetRank, len(res.Ranked))

			if row, ok := a.data.ByStrategy(string(res.Strategy)); ok {
				fmt.Fprintf(out, "Measured: %s, Top-1 %.1f%% (%s)\n", row.Technique, row.Top1, row.Category)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "strategy", "s", string(strategy.Unsorted), "ordering strategy")
	cmd.Flags().BoolVar(&all, "all", false, "rank with every strategy")
	return cmd
}

func printRankTable(out io.Writer, results []strategy.Result) {
	fmt.Fprintf(out, "%-22s %-6s %s\n", "STRATEGY", "RANK", "ORDER")
	for _, res := range results {
		labels := make([]string, len(res.Ranked))
		for i, e := range res.Ranked {
			labels[i] = e.Label
		}
		fmt.Fprintf(out, "%-22s %-6d %s\n", res.Strategy, res.TargetRank, strings.Join(labels, " > "))
	}
}
