package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/ordermatters/internal/segment"
)

// maxSegmentTotal bounds the number of generated items.
const maxSegmentTotal = 10000

// SegmentInput defines the input schema for segment_items.
type SegmentInput struct {
	Total  int `json:"total,omitempty" jsonschema:"Number of items, default 20"`
	Size   int `json:"size,omitempty" jsonschema:"Items per segment, default 10"`
	Target int `json:"target,omitempty" jsonschema:"1-based item number of the target, default 5"`
}

// NewSegmentHandler creates the segment_items tool handler.
func NewSegmentHandler(deps *Dependencies) mcp.ToolHandlerFor[SegmentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SegmentInput) (
		*mcp.CallToolResult, any, error,
	) {
		cfg := segment.DefaultConfig()
		if input.Total > 0 {
			cfg.Total = input.Total
		}
		if input.Size > 0 {
			cfg.Size = input.Size
		}
		if input.Target > 0 {
			cfg.Target = input.Target
		}
		if cfg.Total > maxSegmentTotal {
			return ErrorResult("total too large", "Use at most 10000 items"), nil, nil
		}

		return JSONResult(deps.Engine.Segment(cfg)), nil, nil
	}
}
