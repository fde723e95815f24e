package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/server"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ORDERMATTERS_LOG_FILE", filepath.Join(t.TempDir(), "cli.log"))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{name: "commas", args: []string{"0,1,2"}, want: []int{0, 1, 2}},
		{name: "separate args", args: []string{"2", "1", "0"}, want: []int{2, 1, 0}},
		{name: "brackets and spaces", args: []string{"[3, 1, 2]"}, want: []int{3, 1, 2}},
		{name: "single", args: []string{"7"}, want: []int{7}},
		{name: "empty", args: []string{" , "}, wantErr: true},
		{name: "not a number", args: []string{"1,a"}, wantErr: true},
		{name: "duplicate", args: []string{"1,2,1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSequence(tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidSequence)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTauCmd(t *testing.T) {
	out, err := execute(t, "tau", "4,3,2,1,0")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:      -1.00")
	assert.Contains(t, out, "Concordant: 0")
	assert.Contains(t, out, "Discordant: 10")
	assert.Contains(t, out, "Closest measured ordering: Worst")

	out, err = execute(t, "tau", "1", "0", "--pairs")
	require.NoError(t, err)
	assert.Contains(t, out, "(1, 0) discordant")

	_, err = execute(t, "tau", "1,1")
	assert.ErrorIs(t, err, errInvalidSequence)
}

func TestRankCmd(t *testing.T) {
	out, err := execute(t, "rank", "--strategy", "size")
	require.NoError(t, err)
	assert.Contains(t, out, "Strategy: by-size-desc")
	assert.Contains(t, out, "Target rank: 4 of 4")
	assert.Contains(t, out, "Heuristic (LOC)")

	out, err = execute(t, "rank", "--all")
	require.NoError(t, err)
	for _, s := range strategy.All() {
		assert.Contains(t, out, string(s))
	}
	assert.Contains(t, out, "authMiddleware > inputValidator > dbConnection > userProfile")

	_, err = execute(t, "rank", "-s", "alphabetical")
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func TestMutateCmd(t *testing.T) {
	out, err := execute(t, "mutate", "down:0")
	require.NoError(t, err)
	assert.Contains(t, out, "Before: [0, 1, 2, 3, 4]")
	assert.Contains(t, out, "After:  [1, 0, 2, 3, 4]")
	assert.Contains(t, out, "Score:  0.80")

	out, err = execute(t, "mutate", "--seq", "4,3,2,1,0", "reset:perfect")
	require.NoError(t, err)
	assert.Contains(t, out, "After:  [0, 1, 2, 3, 4]")

	out, err = execute(t, "mutate", "up:0", "down:9")
	require.NoError(t, err)
	assert.Contains(t, out, "After:  [0, 1, 2, 3, 4]", "boundary moves are no-ops")

	_, err = execute(t, "mutate", "shuffle:1")
	assert.ErrorIs(t, err, editor.ErrUnknownOp)

	_, err = execute(t, "mutate", "reset:sideways")
	assert.ErrorIs(t, err, editor.ErrUnknownMode)
}

func TestSegmentCmd(t *testing.T) {
	out, err := execute(t, "segment", "--size", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Segment 1: 1 2 3 4 *5")
	assert.Contains(t, out, "Segment 4: 16 17 18 19 20")
	assert.Contains(t, out, "Target: segment 1, position 5")

	out, err = execute(t, "segment")
	require.NoError(t, err)
	assert.Contains(t, out, "Measured at size 10")

	out, err = execute(t, "segment", "--target", "99")
	require.NoError(t, err)
	assert.Contains(t, out, "Target: not among the items")
}

func TestResultsCmd(t *testing.T) {
	out, err := execute(t, "results")
	require.NoError(t, err)
	for _, want := range []string{"Order Bias", "Segmentation", "Ordering Strategies", "Memorization"} {
		assert.Contains(t, out, want)
	}

	out, err = execute(t, "results", "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "DepGraph (AI-Graph)")
	assert.NotContains(t, out, "Order Bias")

	out, err = execute(t, "results", "--score", "0.4")
	require.NoError(t, err)
	assert.Contains(t, out, "Mod. Perfect")

	out, err = execute(t, "results", "--strategy", "callgraph (bfs)")
	require.NoError(t, err)
	assert.Contains(t, out, "34.9")

	_, err = execute(t, "results", "--size", "99")
	assert.Error(t, err)

	_, err = execute(t, "results", "charts")
	assert.Error(t, err)
}

func TestDataFlag(t *testing.T) {
	_, err := execute(t, "--data", filepath.Join(t.TempDir(), "missing.yaml"), "tau", "0,1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dataset")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("playground: []\n"), 0o644))
	_, err = execute(t, "--data", bad, "tau", "0,1")
	assert.ErrorIs(t, err, dataset.ErrInvalidDataset)
}

func TestStatsCmd(t *testing.T) {
	data, err := dataset.Default()
	require.NoError(t, err)
	engine := service.NewEngine(data, metrics.NewCollector())
	engine.Correlation([]int{1, 0})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(server.NewHTTPHandler(server.HTTPOptions{
		Engine:   engine,
		Sessions: service.NewSessionManager(engine, nil, 0, logger),
		Logger:   logger,
	}))
	defer srv.Close()

	out, err := execute(t, "stats", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Server Statistics")
	assert.Contains(t, out, "Sessions: 0 active, 0 total")
	assert.Contains(t, out, "Correlation:")
	assert.Contains(t, out, "Calls: 1")
}

func TestPlayCmd_RequiresTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("running in a terminal")
	}
	_, err := execute(t, "play")
	assert.ErrorIs(t, err, errNoTerminal)
}
