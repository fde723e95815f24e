package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/client"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
)

func newStatsCmd(a *app) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show server statistics",
		Long: `Show runtime statistics of an ordermatters-server: sessions, operation
timings and language model token usage.

Examples:
  ordermatters stats
  ordermatters stats --server http://localhost:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = a.cfg.ServerURL
			}

			stats, err := client.New(serverURL).Stats(context.Background())
			if err != nil {
				return fmt.Errorf("get server stats: %w", err)
			}
			printServerStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (default $ORDERMATTERS_SERVER_URL)")
	return cmd
}

// printServerStats displays server runtime statistics.
func printServerStats(out io.Writer, stats *metrics.Snapshot) {
	fmt.Fprintf(out, "Server Statistics (in-memory, since restart)\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "Uptime: %.1f seconds\n", stats.UptimeSeconds)
	fmt.Fprintf(out, "Sessions: %d active, %d total\n", stats.ActiveSessions, stats.TotalSessions)

	ops := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"Correlation", stats.Correlation},
		{"Strategy", stats.Strategy},
		{"Mutation", stats.Mutation},
		{"Segment", stats.Segment},
		{"LLM Generate", stats.LLMGenerate},
	}
	for _, o := range ops {
		if o.op == nil {
			continue
		}
		fmt.Fprintf(out, "\n%s:\n", o.name)
		printOpStats(out, o.op)
		printTokenStats(out, o.op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(out io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(out, "  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Fprintf(out, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(out io.Writer, op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Fprintf(out, "  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Fprintf(out, ", avg %.0f", *op.AvgInputTokens)
	}
	if op.MinInputTokens != nil && op.MaxInputTokens != nil {
		fmt.Fprintf(out, ", min %d, max %d", *op.MinInputTokens, *op.MaxInputTokens)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Fprintf(out, ", avg %.0f", *op.AvgOutputTokens)
	}
	if op.MinOutputTokens != nil && op.MaxOutputTokens != nil {
		fmt.Fprintf(out, ", min %d, max %d", *op.MinOutputTokens, *op.MaxOutputTokens)
	}
	fmt.Fprintln(out)
}
