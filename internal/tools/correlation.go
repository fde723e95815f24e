package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/ordermatters/internal/tau"
)

// maxSequenceLen bounds the O(n²) pair classification.
const maxSequenceLen = 500

// CorrelationInput defines the input schema for compute_correlation.
type CorrelationInput struct {
	Sequence     []int `json:"sequence" jsonschema:"Ordered list of distinct integer identities; ascending order is ideal"`
	IncludePairs bool  `json:"include_pairs,omitempty" jsonschema:"Return every classified pair"`
}

// NewCorrelationHandler creates the compute_correlation tool handler.
func NewCorrelationHandler(deps *Dependencies) mcp.ToolHandlerFor[CorrelationInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CorrelationInput) (
		*mcp.CallToolResult, any, error,
	) {
		if len(input.Sequence) > maxSequenceLen {
			return ErrorResult(
				fmt.Sprintf("sequence has %d items, max %d", len(input.Sequence), maxSequenceLen),
				"Score a shorter sequence",
			), nil, nil
		}
		if dup, ok := firstDuplicate(input.Sequence); ok {
			return ErrorResult(fmt.Sprintf("duplicate identity %d", dup), "Identities must be distinct"), nil, nil
		}

		res := deps.Engine.Correlation(input.Sequence)
		if !input.IncludePairs {
			res.Pairs = nil
		}
		deps.Logger.Debug("correlation computed", "n", len(input.Sequence), "score", res.Score)
		return JSONResult(correlationOutput{Result: res, TotalPairs: res.TotalPairs()}), nil, nil
	}
}

type correlationOutput struct {
	tau.Result
	TotalPairs int `json:"total_pairs"`
}

func firstDuplicate(seq []int) (int, bool) {
	seen := make(map[int]bool, len(seq))
	for _, v := range seq {
		if seen[v] {
			return v, true
		}
		seen[v] = true
	}
	return 0, false
}
