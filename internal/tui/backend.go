package tui

import (
	"context"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

// Backend runs session operations for the UI. *client.Live implements it
// for a remote server; Local runs in-process.
type Backend interface {
	State(ctx context.Context) (service.State, error)
	MoveUp(ctx context.Context, index int) (service.State, error)
	MoveDown(ctx context.Context, index int) (service.State, error)
	Reset(ctx context.Context, mode string) (service.State, error)
	Strategy(ctx context.Context, name string) (service.State, error)
	Segment(ctx context.Context, size int) (segment.Result, error)
	Ask(ctx context.Context, question string) (chat.Message, error)
	Close() error
}

// Local is a Backend over an in-process session.
type Local struct {
	sessions *service.SessionManager
	id       string
}

// NewLocal opens a session on sessions.
func NewLocal(sessions *service.SessionManager) *Local {
	return &Local{sessions: sessions, id: sessions.Create().ID}
}

func (l *Local) State(context.Context) (service.State, error) {
	return l.sessions.State(l.id)
}

func (l *Local) MoveUp(_ context.Context, index int) (service.State, error) {
	return l.sessions.Apply(l.id, editor.MoveUp(index))
}

func (l *Local) MoveDown(_ context.Context, index int) (service.State, error) {
	return l.sessions.Apply(l.id, editor.MoveDown(index))
}

func (l *Local) Reset(_ context.Context, mode string) (service.State, error) {
	m, err := editor.ParseMode(mode)
	if err != nil {
		return service.State{}, err
	}
	return l.sessions.Apply(l.id, editor.Reset(m))
}

func (l *Local) Strategy(_ context.Context, name string) (service.State, error) {
	s, err := strategy.Parse(name)
	if err != nil {
		return service.State{}, err
	}
	return l.sessions.SelectStrategy(l.id, s)
}

func (l *Local) Segment(_ context.Context, size int) (segment.Result, error) {
	return l.sessions.Segment(l.id, size)
}

func (l *Local) Ask(ctx context.Context, question string) (chat.Message, error) {
	return l.sessions.Ask(ctx, l.id, question)
}

// Close discards the session.
func (l *Local) Close() error {
	l.sessions.Delete(l.id)
	return nil
}
