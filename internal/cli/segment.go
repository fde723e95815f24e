package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/segment"
)

func newSegmentCmd(a *app) *cobra.Command {
	cfg := segment.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Split items into segments and locate the target",
		Long: `Split items 1..total into consecutive segments and report where the target
item lands, with the accuracy measured for the segment size when known.

Examples:
  ordermatters segment
  ordermatters segment --size 5
  ordermatters segment --total 50 --size 10 --target 37`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.engine.Segment(cfg)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%d items, segment size %d, target item %d\n\n", res.Total, res.Size, res.Target)
			for _, seg := range res.Segments {
				items := make([]string, len(seg.Items))
				for i, item := range seg.Items {
					items[i] = strconv.Itoa(item)
					if item == res.Target {
						items[i] = "*" + items[i]
					}
				}
				fmt.Fprintf(out, "  Segment %d: %s\n", seg.Index+1, strings.Join(items, " "))
			}

			if res.TargetSegment >= 0 {
				fmt.Fprintf(out, "\nTarget: segment %d, position %d\n", res.TargetSegment+1, res.TargetPosition)
			} else {
				fmt.Fprintf(out, "\nTarget: not among the items\n")
			}

			if row, ok := a.data.BySegmentSize(res.Size); ok {
				fmt.Fprintf(out, "Measured at size %d: perfect %.1f%%, worst %.1f%%, gap %.1f\n",
					row.SegmentSize, row.PerfectTop1, row.WorstTop1, row.Gap())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Total, "total", cfg.Total, "number of items")
	cmd.Flags().IntVar(&cfg.Size, "size", cfg.Size, "items per segment")
	cmd.Flags().IntVar(&cfg.Target, "target", cfg.Target, "target item (1-based)")
	return cmd
}
