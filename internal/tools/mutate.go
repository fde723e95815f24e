package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/tau"
)

// MutateInput defines the input schema for mutate_sequence.
type MutateInput struct {
	Sequence []int    `json:"sequence" jsonschema:"Current ordered list of identities"`
	Ops      []string `json:"ops" jsonschema:"Operations applied in order: up:INDEX, down:INDEX, reset:perfect|worst|random"`
}

// MutateOutput is the sequence after all operations.
type MutateOutput struct {
	Sequence []int      `json:"sequence"`
	Result   tau.Result `json:"result"`
}

// NewMutateHandler creates the mutate_sequence tool handler.
func NewMutateHandler(deps *Dependencies) mcp.ToolHandlerFor[MutateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MutateInput) (
		*mcp.CallToolResult, any, error,
	) {
		if len(input.Sequence) > maxSequenceLen {
			return ErrorResult(
				fmt.Sprintf("sequence has %d items, max %d", len(input.Sequence), maxSequenceLen),
				"Mutate a shorter sequence",
			), nil, nil
		}
		if dup, ok := firstDuplicate(input.Sequence); ok {
			return ErrorResult(fmt.Sprintf("duplicate identity %d", dup), "Identities must be distinct"), nil, nil
		}
		if len(input.Ops) == 0 {
			return ErrorResult("ops cannot be empty", "Provide at least one operation such as up:1"), nil, nil
		}

		ops := make([]editor.Op, 0, len(input.Ops))
		for i, raw := range input.Ops {
			op, err := editor.ParseOp(raw)
			if err != nil {
				return ErrorResult(fmt.Sprintf("op %d: %v", i, err), "Use up:INDEX, down:INDEX or reset:MODE"), nil, nil
			}
			ops = append(ops, op)
		}

		seq, res := deps.Engine.Mutate(input.Sequence, ops)
		res.Pairs = nil
		return JSONResult(MutateOutput{Sequence: seq, Result: res}), nil, nil
	}
}
