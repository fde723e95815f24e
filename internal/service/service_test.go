package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

type stubGenerator struct {
	answer string
	err    error
}

func (g stubGenerator) Reply(context.Context, string, []chat.Message, string) (string, error) {
	return g.answer, g.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	data, err := dataset.Default()
	require.NoError(t, err)
	return NewEngine(data, metrics.NewCollector())
}

func newTestManager(t *testing.T, gen chat.Generator) *SessionManager {
	t.Helper()
	var assistant *chat.Assistant
	if gen != nil {
		assistant = chat.NewAssistant(gen, "briefing", 0, quietLogger())
	}
	return NewSessionManager(newTestEngine(t), assistant, 7, quietLogger())
}

func TestEngine_Operations(t *testing.T) {
	e := newTestEngine(t)

	res := e.Correlation([]int{4, 3, 2, 1, 0})
	assert.Equal(t, -1.0, res.Score)

	ranked := e.Rank(nil, strategy.BySizeDesc)
	assert.Equal(t, 4, ranked.TargetRank)

	custom := e.Rank([]models.Entity{{ID: 0, Label: "only", Target: true}}, strategy.ByDistanceAsc)
	assert.Equal(t, 1, custom.TargetRank)

	assert.Len(t, e.RankAll(), len(strategy.All()))

	seq, score := e.Mutate([]int{0, 1, 2, 3, 4}, []editor.Op{editor.MoveDown(0), editor.MoveDown(1)})
	assert.Equal(t, []int{1, 2, 0, 3, 4}, seq)
	assert.Equal(t, 0.6, score.Score)

	split := e.Segment(segment.Config{Total: 20, Size: 4, Target: 5})
	assert.Equal(t, 5, split.Count())

	snap := e.Metrics().Snapshot()
	require.NotNil(t, snap.Correlation)
	require.NotNil(t, snap.Strategy)
	assert.Equal(t, int64(3), snap.Strategy.Count)
	require.NotNil(t, snap.Mutation)
	require.NotNil(t, snap.Segment)
}

func TestEngine_MutateEmpty(t *testing.T) {
	e := NewEngine(&dataset.Dataset{}, nil)

	seq, score := e.Mutate(nil, nil)
	assert.NotNil(t, seq)
	assert.Empty(t, seq)
	assert.Equal(t, 1.0, score.Score)
}

func TestSessionManager_Lifecycle(t *testing.T) {
	m := newTestManager(t, nil)

	s := m.Create()
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, []string{s.ID}, m.IDs())

	state, err := m.State(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, state.SessionID)
	assert.Equal(t, 1.0, state.Result.Score)
	assert.Equal(t, 1, state.TargetPosition)
	require.NotNil(t, state.Expected)
	assert.Equal(t, "Perfect", state.Expected.Label)
	assert.Equal(t, strategy.Unsorted, state.Strategy.Strategy)
	assert.Equal(t, chat.StateIdle, state.ChatState)

	m.Delete(s.ID)
	m.Delete(s.ID)
	assert.Zero(t, m.Count())

	_, err = m.State(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	snap := m.engine.Metrics().Snapshot()
	assert.Equal(t, int64(0), snap.ActiveSessions)
	assert.Equal(t, int64(1), snap.TotalSessions)
}

func TestSessionManager_Apply(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create()

	state, err := m.Apply(s.ID, editor.MoveDown(0))
	require.NoError(t, err)
	assert.Equal(t, 0.8, state.Result.Score)
	assert.Equal(t, 2, state.TargetPosition)
	assert.Equal(t, "Perfect", state.Expected.Label)

	state, err = m.Apply(s.ID, editor.Reset(editor.ModeWorst))
	require.NoError(t, err)
	assert.Equal(t, -1.0, state.Result.Score)
	assert.Equal(t, "Worst", state.Expected.Label)

	_, err = m.Apply("missing", editor.MoveUp(1))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_SessionsAreIsolated(t *testing.T) {
	m := newTestManager(t, nil)
	a := m.Create()
	b := m.Create()

	_, err := m.Apply(a.ID, editor.Reset(editor.ModeWorst))
	require.NoError(t, err)

	state, err := m.State(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, state.Result.Score)
}

func TestSessionManager_SelectStrategy(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create()

	state, err := m.SelectStrategy(s.ID, strategy.BySizeDesc)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Strategy.TargetRank)
	require.NotNil(t, state.Measured)
	assert.Equal(t, "Heuristic (LOC)", state.Measured.Technique)

	state, err = m.SelectStrategy(s.ID, strategy.ByDistanceAsc)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Strategy.TargetRank)

	_, err = m.SelectStrategy(s.ID, strategy.Strategy("alphabetical"))
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func TestSessionManager_Segment(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create()

	split, err := m.Segment(s.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, split.Count())
	assert.Equal(t, 1, split.TargetSegment)

	split, err = m.Segment(s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, segment.MinSize, split.Size)

	split, err = m.Segment(s.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, split.Count())
}

func TestSessionManager_Ask(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		m := newTestManager(t, stubGenerator{answer: "Yes, it helps."})
		s := m.Create()

		msg, err := m.Ask(context.Background(), s.ID, "Does segmentation help?")
		require.NoError(t, err)
		assert.Equal(t, "Yes, it helps.", msg.Text)

		msgs, err := m.Messages(s.ID)
		require.NoError(t, err)
		assert.Len(t, msgs, 3)

		st, err := m.State(s.ID)
		require.NoError(t, err)
		assert.Equal(t, chat.StateIdle, st.ChatState)
		assert.Equal(t, msgs, st.Messages)
	})

	t.Run("model failure becomes a message", func(t *testing.T) {
		m := newTestManager(t, stubGenerator{err: errors.New("connection refused")})
		s := m.Create()

		msg, err := m.Ask(context.Background(), s.ID, "hello")
		require.NoError(t, err)
		assert.True(t, msg.IsError)
	})

	t.Run("empty question", func(t *testing.T) {
		m := newTestManager(t, stubGenerator{answer: "x"})
		s := m.Create()

		_, err := m.Ask(context.Background(), s.ID, " ")
		assert.ErrorIs(t, err, chat.ErrEmptyQuestion)
	})

	t.Run("no assistant", func(t *testing.T) {
		m := newTestManager(t, nil)
		s := m.Create()

		_, err := m.Ask(context.Background(), s.ID, "hello")
		assert.ErrorIs(t, err, ErrAssistantUnavailable)
	})

	t.Run("unknown session", func(t *testing.T) {
		m := newTestManager(t, stubGenerator{answer: "x"})
		_, err := m.Ask(context.Background(), "nope", "hello")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSessionManager_ConcurrentApply(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = m.Apply(s.ID, editor.MoveDown(i%4))
		}(i)
	}
	wg.Wait()

	state, err := m.State(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, state.Result.Concordant+state.Result.Discordant)
	assert.Len(t, state.Items, 5)
}
