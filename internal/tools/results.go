package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Result tables served by lookup_results.
const (
	TableOrder        = "order"
	TableSegmentation = "segmentation"
	TableStrategies   = "strategies"
	TableLeakage      = "leakage"
)

// ResultsInput defines the input schema for lookup_results.
type ResultsInput struct {
	Table       string   `json:"table,omitempty" jsonschema:"order, segmentation, strategies or leakage; omit for a keyed lookup"`
	Score       *float64 `json:"score,omitempty" jsonschema:"Kendall Tau score to find the nearest order-bias row for"`
	SegmentSize int      `json:"segment_size,omitempty" jsonschema:"Segment size to look up"`
	Strategy    string   `json:"strategy,omitempty" jsonschema:"Strategy name or technique to look up"`
}

// NewResultsHandler creates the lookup_results tool handler.
func NewResultsHandler(deps *Dependencies) mcp.ToolHandlerFor[ResultsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResultsInput) (
		*mcp.CallToolResult, any, error,
	) {
		data := deps.Engine.Dataset()

		switch {
		case input.Score != nil:
			if *input.Score < -1 || *input.Score > 1 {
				return ErrorResult("score must be between -1 and 1", ""), nil, nil
			}
			row, ok := data.NearestOrderBias(*input.Score)
			if !ok {
				return ErrorResult("no order-bias data", "Check the dataset"), nil, nil
			}
			return JSONResult(row), nil, nil

		case input.SegmentSize > 0:
			row, ok := data.BySegmentSize(input.SegmentSize)
			if !ok {
				return ErrorResult(fmt.Sprintf("no result for segment size %d", input.SegmentSize), "Measured sizes are 10, 20, 30, 40 and 50"), nil, nil
			}
			return JSONResult(row), nil, nil

		case input.Strategy != "":
			row, ok := data.ByStrategy(input.Strategy)
			if !ok {
				return ErrorResult(fmt.Sprintf("no result for strategy %q", input.Strategy), "Use table=strategies to list techniques"), nil, nil
			}
			return JSONResult(row), nil, nil
		}

		switch input.Table {
		case TableOrder:
			return JSONResult(data.OrderBias), nil, nil
		case TableSegmentation:
			return JSONResult(data.Segmentation), nil, nil
		case TableStrategies:
			return JSONResult(data.StrategiesByTop1()), nil, nil
		case TableLeakage:
			return JSONResult(data.Leakage), nil, nil
		case "":
			return ErrorResult("nothing to look up", "Provide table, score, segment_size or strategy"), nil, nil
		}
		return ErrorResult(fmt.Sprintf("unknown table %q", input.Table), "Valid tables: order, segmentation, strategies, leakage"), nil, nil
	}
}
