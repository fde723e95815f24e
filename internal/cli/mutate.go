package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/models"
)

func newMutateCmd(a *app) *cobra.Command {
	var seqFlag string

	cmd := &cobra.Command{
		Use:   "mutate <op>...",
		Short: "Apply moves and resets to a sequence",
		Long: `Apply operations in order to a sequence and print the result.

Operations:
  up:<index>      swap with the previous item
  down:<index>    swap with the next item
  reset:<mode>    perfect, worst or random

Out-of-range moves leave the sequence unchanged. Without --seq the
playground ids are used.

Examples:
  ordermatters mutate down:0 down:1
  ordermatters mutate --seq 4,3,2,1,0 reset:perfect
  ordermatters mutate --seq 0,1,2 reset:random`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq := models.IDs(a.data.Playground)
			if seqFlag != "" {
				var err error
				if seq, err = parseSequence([]string{seqFlag}); err != nil {
					return err
				}
			}

			ops := make([]editor.Op, 0, len(args))
			for _, arg := range args {
				op, err := editor.ParseOp(arg)
				if err != nil {
					return err
				}
				ops = append(ops, op)
			}

			next, res := a.engine.Mutate(seq, ops)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Before: %s\n", formatSequence(seq))
			fmt.Fprintf(out, "After:  %s\n", formatSequence(next))
			fmt.Fprintf(out, "Score:  %.2f (concordant %d, discordant %d)\n", res.Score, res.Concordant, res.Discordant)
			return nil
		},
	}

	cmd.Flags().StringVar(&seqFlag, "seq", "", "starting sequence, e.g. 0,1,2,3,4")
	return cmd
}
