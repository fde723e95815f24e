package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
	"github.com/raphaelgruber/ordermatters/internal/models"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
	"github.com/raphaelgruber/ordermatters/internal/tau"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrAssistantUnavailable = errors.New("no language model configured")
)

// Session owns one interactive sequence, the fixed strategy set, the
// selected strategy and a conversation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	editor   *editor.Editor
	ranker   *strategy.Ranker
	selected strategy.Strategy
	split    segment.Config
	conv     *chat.Conversation
}

// State is what a presentation layer renders for a session.
type State struct {
	SessionID      string                `json:"session_id"`
	Items          []models.Entity       `json:"items"`
	Result         tau.Result            `json:"result"`
	TargetPosition int                   `json:"target_position"`
	Expected       *dataset.OrderBiasRow `json:"expected,omitempty"`
	Strategy       strategy.Result       `json:"strategy"`
	Measured       *dataset.StrategyRow  `json:"measured,omitempty"`
	ChatState      chat.State            `json:"chat_state"`
	Messages       []chat.Message        `json:"messages"`
}

// SessionManager creates and tracks live sessions.
type SessionManager struct {
	engine    *Engine
	assistant *chat.Assistant
	seed      int64
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a manager. assistant may be nil, in which case
// questions fail with ErrAssistantUnavailable. A non-zero seed makes random
// resets reproducible.
func NewSessionManager(engine *Engine, assistant *chat.Assistant, seed int64, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		engine:    engine,
		assistant: assistant,
		seed:      seed,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Create seeds a new session from the playground configuration.
func (m *SessionManager) Create() *Session {
	var opts []editor.Option
	if m.seed != 0 {
		opts = append(opts, editor.WithSeed(m.seed))
	}

	data := m.engine.Dataset()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		editor:    editor.New(data.Playground, opts...),
		ranker:    strategy.NewRanker(data.StrategyEntities),
		selected:  strategy.Unsorted,
		split:     segment.DefaultConfig(),
		conv:      chat.NewConversation(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if c := m.engine.Metrics(); c != nil {
		c.SessionOpened()
	}
	m.logger.Info("session created", "session_id", s.ID)
	return s
}

// Get looks a session up by id.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete discards a session. Unknown ids are ignored.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	if c := m.engine.Metrics(); c != nil {
		c.SessionClosed()
	}
	m.logger.Info("session closed", "session_id", id)
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs lists open sessions, oldest first.
func (m *SessionManager) IDs() []string {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// State returns the current view of a session.
func (m *SessionManager) State(id string) (State, error) {
	s, err := m.Get(id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return m.stateLocked(s), nil
}

// Apply mutates the session's sequence.
func (m *SessionManager) Apply(id string, op editor.Op) (State, error) {
	s, err := m.Get(id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res := s.editor.Apply(op)
	m.record(metrics.OpMutation, start)

	m.logger.Debug("sequence mutated", "session_id", id, "op", op.Kind, "index", op.Index, "mode", op.Mode, "score", res.Score)
	return m.stateLocked(s), nil
}

// SelectStrategy changes the strategy shown for the session.
func (m *SessionManager) SelectStrategy(id string, st strategy.Strategy) (State, error) {
	if !st.Valid() {
		return State{}, fmt.Errorf("%w: %q", strategy.ErrUnknownStrategy, st)
	}
	s, err := m.Get(id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = st
	return m.stateLocked(s), nil
}

// Segment resizes the session's segmentation and returns the split.
func (m *SessionManager) Segment(id string, size int) (segment.Result, error) {
	s, err := m.Get(id)
	if err != nil {
		return segment.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.split.Size = max(segment.MinSize, min(size, segment.MaxSize))
	return m.engine.Segment(s.split), nil
}

// Ask runs a chat cycle on the session's conversation. The session lock is
// not held while the model answers, so moves stay responsive.
func (m *SessionManager) Ask(ctx context.Context, id, question string) (chat.Message, error) {
	s, err := m.Get(id)
	if err != nil {
		return chat.Message{}, err
	}
	if m.assistant == nil {
		return chat.Message{}, ErrAssistantUnavailable
	}

	msg, err := m.assistant.Ask(ctx, s.conv, question)
	if err != nil && !msg.IsError {
		return chat.Message{}, err
	}
	if err != nil {
		m.logger.Warn("chat failed", "session_id", id, "error", err)
	}
	return msg, nil
}

// Messages returns the session's chat log.
func (m *SessionManager) Messages(id string) ([]chat.Message, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.conv.Messages(), nil
}

func (m *SessionManager) stateLocked(s *Session) State {
	start := time.Now()
	ranked := s.ranker.Rank(s.selected)
	m.record(metrics.OpStrategy, start)

	res := s.editor.Result()
	chatState, messages := s.conv.Snapshot()
	st := State{
		SessionID:      s.ID,
		Items:          s.editor.Items(),
		Result:         res,
		TargetPosition: s.editor.TargetPosition(),
		Strategy:       ranked,
		ChatState:      chatState,
		Messages:       messages,
	}

	data := m.engine.Dataset()
	if row, ok := data.NearestOrderBias(res.Score); ok {
		st.Expected = &row
	}
	if row, ok := data.ByStrategy(string(s.selected)); ok {
		st.Measured = &row
	}
	return st
}

func (m *SessionManager) record(op string, start time.Time) {
	if c := m.engine.Metrics(); c != nil {
		c.RecordTiming(op, time.Since(start))
	}
}
