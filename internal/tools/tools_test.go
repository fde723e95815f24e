package tools_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/tools"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()

	data, err := dataset.Default()
	require.NoError(t, err)

	server := mcp.NewServer(&mcp.Implementation{Name: "test-ordermatters", Version: "0.0.1-test"}, nil)
	tools.RegisterAll(server, &tools.Dependencies{
		Engine: service.NewEngine(data, metrics.NewCollector()),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	return text.Text, result.IsError
}

func TestToolsList(t *testing.T) {
	session := connect(t)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"compute_correlation", "apply_strategy", "mutate_sequence", "segment_items", "lookup_results",
	}, names)
}

func TestComputeCorrelation(t *testing.T) {
	session := connect(t)

	t.Run("ideal order", func(t *testing.T) {
		text, isErr := call(t, session, "compute_correlation", map[string]any{"sequence": []int{0, 1, 2, 3, 4}})
		require.False(t, isErr, text)

		var out struct {
			Score      float64 `json:"score"`
			Concordant int     `json:"concordant"`
			Discordant int     `json:"discordant"`
			TotalPairs int     `json:"total_pairs"`
			Pairs      []any   `json:"pairs"`
		}
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, 1.0, out.Score)
		assert.Equal(t, 10, out.Concordant)
		assert.Equal(t, 10, out.TotalPairs)
		assert.Empty(t, out.Pairs)
	})

	t.Run("with pairs", func(t *testing.T) {
		text, isErr := call(t, session, "compute_correlation", map[string]any{
			"sequence": []int{1, 0}, "include_pairs": true,
		})
		require.False(t, isErr, text)
		assert.Contains(t, text, `"discordant"`)
		assert.Contains(t, text, `"score": -1`)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		text, isErr := call(t, session, "compute_correlation", map[string]any{"sequence": []int{1, 1}})
		assert.True(t, isErr)
		assert.Contains(t, text, "duplicate identity 1")
	})
}

func TestApplyStrategy(t *testing.T) {
	session := connect(t)

	t.Run("reference set", func(t *testing.T) {
		text, isErr := call(t, session, "apply_strategy", map[string]any{"strategy": "loc"})
		require.False(t, isErr, text)

		var out struct {
			Strategy   string `json:"strategy"`
			TargetRank int    `json:"target_rank"`
		}
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, "by-size-desc", out.Strategy)
		assert.Equal(t, 4, out.TargetRank)
	})

	t.Run("custom set", func(t *testing.T) {
		text, isErr := call(t, session, "apply_strategy", map[string]any{
			"strategy": "by-distance-asc",
			"entities": []map[string]any{
				{"id": 0, "label": "a", "target": false, "distance": 9},
				{"id": 1, "label": "b", "target": true, "distance": 1},
			},
		})
		require.False(t, isErr, text)
		assert.Contains(t, text, `"target_rank": 1`)
	})

	t.Run("all", func(t *testing.T) {
		text, isErr := call(t, session, "apply_strategy", map[string]any{"all": true})
		require.False(t, isErr, text)

		var out []map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Len(t, out, 4)
	})

	t.Run("unknown", func(t *testing.T) {
		text, isErr := call(t, session, "apply_strategy", map[string]any{"strategy": "alphabetical"})
		assert.True(t, isErr)
		assert.Contains(t, text, "Valid strategies")
	})
}

func TestMutateSequence(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "mutate_sequence", map[string]any{
		"sequence": []int{0, 1, 2, 3, 4},
		"ops":      []string{"down:0", "up:0", "reset:worst", "up:0"},
	})
	require.False(t, isErr, text)

	var out tools.MutateOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, []int{4, 3, 2, 1, 0}, out.Sequence)
	assert.Equal(t, -1.0, out.Result.Score)

	text, isErr = call(t, session, "mutate_sequence", map[string]any{
		"sequence": []int{0, 1},
		"ops":      []string{"twist:1"},
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "op 0")
}

func TestMutateSequence_Rejected(t *testing.T) {
	session := connect(t)

	long := make([]int, 501)
	for i := range long {
		long[i] = i
	}

	tests := []struct {
		name     string
		sequence []int
		contains string
	}{
		{"too long", long, "sequence has 501 items, max 500"},
		{"duplicates", []int{0, 2, 2, 1}, "duplicate identity 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, session, "mutate_sequence", map[string]any{
				"sequence": tt.sequence,
				"ops":      []string{"down:0"},
			})
			assert.True(t, isErr)
			assert.Contains(t, text, tt.contains)
		})
	}
}

func TestSegmentItems(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "segment_items", map[string]any{"size": 4})
	require.False(t, isErr, text)

	var out struct {
		Segments       []any `json:"segments"`
		TargetSegment  int   `json:"target_segment"`
		TargetPosition int   `json:"target_position"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Len(t, out.Segments, 5)
	assert.Equal(t, 1, out.TargetSegment)
	assert.Equal(t, 1, out.TargetPosition)
}

func TestLookupResults(t *testing.T) {
	session := connect(t)

	tests := []struct {
		name     string
		args     map[string]any
		wantErr  bool
		contains string
	}{
		{"score", map[string]any{"score": 0.8}, false, `"label": "Perfect"`},
		{"score out of range", map[string]any{"score": 3}, true, "between -1 and 1"},
		{"segment size", map[string]any{"segment_size": 20}, false, `"perfect_top1": 49.3`},
		{"unknown segment size", map[string]any{"segment_size": 15}, true, "segment size 15"},
		{"strategy", map[string]any{"strategy": "depgraph (ai-graph)"}, false, `"top1": 48.3`},
		{"table", map[string]any{"table": "leakage"}, false, "Low Relevance Context"},
		{"unknown table", map[string]any{"table": "bugs"}, true, "unknown table"},
		{"nothing", map[string]any{}, true, "nothing to look up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, session, "lookup_results", tt.args)
			assert.Equal(t, tt.wantErr, isErr, text)
			assert.Contains(t, text, tt.contains)
		})
	}
}
