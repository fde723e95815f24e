package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

// StrategyInput defines the input schema for apply_strategy.
type StrategyInput struct {
	Strategy string          `json:"strategy,omitempty" jsonschema:"unsorted, by-size-desc, by-distance-asc or by-learned-score-desc (aliases: loc, callgraph, depgraph)"`
	All      bool            `json:"all,omitempty" jsonschema:"Rank with every strategy"`
	Entities []models.Entity `json:"entities,omitempty" jsonschema:"Entity set to rank; defaults to the reference set"`
}

// NewStrategyHandler creates the apply_strategy tool handler.
func NewStrategyHandler(deps *Dependencies) mcp.ToolHandlerFor[StrategyInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StrategyInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.All {
			if input.Entities != nil {
				results := make([]strategy.Result, 0, len(strategy.All()))
				for _, s := range strategy.All() {
					results = append(results, deps.Engine.Rank(input.Entities, s))
				}
				return JSONResult(results), nil, nil
			}
			return JSONResult(deps.Engine.RankAll()), nil, nil
		}

		if input.Strategy == "" {
			return ErrorResult("strategy cannot be empty", "Provide a strategy name or set all=true"), nil, nil
		}
		s, err := strategy.Parse(input.Strategy)
		if err != nil {
			return ErrorResult(err.Error(), "Valid strategies: "+strategyNames()), nil, nil
		}

		res := deps.Engine.Rank(input.Entities, s)
		deps.Logger.Debug("strategy applied", "strategy", s, "target_rank", res.TargetRank)
		return JSONResult(res), nil, nil
	}
}

func strategyNames() string {
	names := make([]string, 0, len(strategy.All()))
	for _, s := range strategy.All() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
