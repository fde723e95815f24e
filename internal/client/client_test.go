package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/client"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/server"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

type stubGenerator struct {
	answer string
	err    error
}

func (g stubGenerator) Reply(context.Context, string, []chat.Message, string) (string, error) {
	return g.answer, g.err
}

// slowGenerator answers after delay unless its context ends first.
type slowGenerator struct {
	delay time.Duration
}

func (g slowGenerator) Reply(ctx context.Context, _ string, _ []chat.Message, _ string) (string, error) {
	select {
	case <-time.After(g.delay):
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newClient(t *testing.T, gen chat.Generator) *client.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	data, err := dataset.Default()
	require.NoError(t, err)
	engine := service.NewEngine(data, metrics.NewCollector())

	var assistant *chat.Assistant
	if gen != nil {
		assistant = chat.NewAssistant(gen, "briefing", 0, logger)
	}

	srv := httptest.NewServer(server.NewHTTPHandler(server.HTTPOptions{
		Engine:   engine,
		Sessions: service.NewSessionManager(engine, assistant, 1, logger),
		Logger:   logger,
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNew_DefaultURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8484", client.New("").BaseURL())
	assert.Equal(t, "http://example.com", client.New("http://example.com/").BaseURL())
}

func TestClient_HealthResultsStats(t *testing.T) {
	c := newClient(t, nil)
	ctx := testContext(t)

	require.NoError(t, c.Health(ctx))

	ds, err := c.Results(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Playground, 5)
	assert.Len(t, ds.StrategyEntities, 4)

	snap, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.ActiveSessions)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.Stats(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.Error(t, c.Health(testContext(t)))
}

func TestLive_Session(t *testing.T) {
	c := newClient(t, stubGenerator{answer: "It matters a lot."})
	ctx := testContext(t)

	l, err := c.Connect(ctx)
	require.NoError(t, err)
	defer l.Close()

	assert.NotEmpty(t, l.SessionID())
	assert.Equal(t, 1.0, l.Initial().Result.Score)

	st, err := l.MoveDown(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.8, st.Result.Score)

	st, err = l.MoveUp(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Result.Score)

	st, err = l.Reset(ctx, "worst")
	require.NoError(t, err)
	assert.Equal(t, -1.0, st.Result.Score)

	st, err = l.Strategy(ctx, "distance")
	require.NoError(t, err)
	assert.Equal(t, strategy.ByDistanceAsc, st.Strategy.Strategy)
	assert.Equal(t, 1, st.Strategy.TargetRank)

	split, err := l.Segment(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, split.Count())

	msg, err := l.Ask(ctx, "Does order matter?")
	require.NoError(t, err)
	assert.Equal(t, "It matters a lot.", msg.Text)

	st, err = l.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.SessionID(), st.SessionID)
	assert.Equal(t, chat.StateIdle, st.ChatState)
}

func TestLive_ServerErrors(t *testing.T) {
	c := newClient(t, nil)
	ctx := testContext(t)

	l, err := c.Connect(ctx)
	require.NoError(t, err)
	defer l.Close()

	_, err = l.Strategy(ctx, "bogus")
	require.True(t, errors.Is(err, client.ErrServer), "got %v", err)

	_, err = l.Ask(ctx, "anyone there?")
	require.ErrorIs(t, err, client.ErrServer)

	// The session survives errors.
	st, err := l.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Result.Score)
}

func TestLive_MovesWhileAsking(t *testing.T) {
	c := newClient(t, slowGenerator{delay: 2 * time.Second})
	ctx := testContext(t)

	l, err := c.Connect(ctx)
	require.NoError(t, err)
	defer l.Close()

	answered := make(chan chat.Message, 1)
	go func() {
		msg, err := l.Ask(ctx, "Does order matter?")
		assert.NoError(t, err)
		answered <- msg
	}()

	require.Eventually(t, func() bool {
		st, err := l.State(ctx)
		return err == nil && st.ChatState == chat.StateAwaiting
	}, time.Second, 10*time.Millisecond)

	moveCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	st, err := l.MoveDown(moveCtx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.8, st.Result.Score)

	select {
	case msg := <-answered:
		assert.Equal(t, "done", msg.Text)
	case <-ctx.Done():
		t.Fatal("no answer")
	}
}

func TestLive_AskTimeoutKeepsSession(t *testing.T) {
	c := newClient(t, slowGenerator{delay: time.Second})
	ctx := testContext(t)

	l, err := c.Connect(ctx)
	require.NoError(t, err)
	defer l.Close()

	askCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = l.Ask(askCtx, "Does order matter?")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	st, err := l.MoveDown(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.8, st.Result.Score)

	// The late answer is dropped and the session keeps working.
	require.Eventually(t, func() bool {
		st, err := l.State(ctx)
		return err == nil && st.ChatState == chat.StateIdle
	}, 3*time.Second, 20*time.Millisecond)

	msg, err := l.Ask(ctx, "And now?")
	require.NoError(t, err)
	assert.Equal(t, "done", msg.Text)
}

func TestConnect_Unreachable(t *testing.T) {
	c := client.New("http://127.0.0.1:1")
	_, err := c.Connect(testContext(t))
	assert.Error(t, err)
}
