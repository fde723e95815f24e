package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compute_correlation",
		Description: "Kendall Tau correlation of a sequence against ascending order, with concordant and discordant pair counts",
	}, NewCorrelationHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_strategy",
		Description: "Rank an entity set with an ordering strategy and report the target's 1-based rank",
	}, NewStrategyHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mutate_sequence",
		Description: "Apply adjacent moves or resets to a sequence and return the new order and its score",
	}, NewMutateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "segment_items",
		Description: "Split items into consecutive segments and locate the target item",
	}, NewSegmentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "lookup_results",
		Description: "Look up measured accuracy by tau score, segment size or strategy, or list a result table",
	}, NewResultsHandler(deps))
}
