package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTauCmd(a *app) *cobra.Command {
	var showPairs bool

	cmd := &cobra.Command{
		Use:   "tau <sequence>",
		Short: "Score a sequence with Kendall Tau",
		Long: `Score an ordering of distinct integers against ascending order.

Examples:
  ordermatters tau 0,1,2,3,4
  ordermatters tau 4 3 2 1 0
  ordermatters tau 1,0,2,3,4 --pairs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(args)
			if err != nil {
				return err
			}

			res := a.engine.Correlation(seq)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sequence:   %s\n", formatSequence(seq))
			fmt.Fprintf(out, "Score:      %.2f\n", res.Score)
			fmt.Fprintf(out, "Concordant: %d\n", res.Concordant)
			fmt.Fprintf(out, "Discordant: %d\n", res.Discordant)

			if row, ok := a.data.NearestOrderBias(res.Score); ok {
				fmt.Fprintf(out, "\nClosest measured ordering: %s (tau %.1f)\n", row.Label, row.Tau)
				fmt.Fprintf(out, "  Top-1 %.1f%%  Top-3 %.1f%%  Top-5 %.1f%%  Top-10 %.1f%%\n",
					row.Top1, row.Top3, row.Top5, row.Top10)
			}

			if showPairs && len(res.Pairs) > 0 {
				fmt.Fprintf(out, "\nPairs:\n")
				for _, p := range res.Pairs {
					fmt.Fprintf(out, "  (%d, %d) %s\n", p.First, p.Second, p.Kind)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPairs, "pairs", false, "list every classified pair")
	return cmd
}
