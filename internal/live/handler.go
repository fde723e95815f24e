package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/ordermatters/internal/editor"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 * 1024
)

// Handler upgrades requests and runs one session per connection.
type Handler struct {
	sessions *service.SessionManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket handler backed by sessions.
func NewHandler(sessions *service.SessionManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local dev
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

type connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	logger  *slog.Logger
}

func (c *connection) send(f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(f); err != nil {
		c.logger.Warn("failed to write frame", "type", f.Type, "error", err)
		return err
	}
	return nil
}

// ServeHTTP runs the session until the client disconnects. The session
// is discarded when the connection closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxMessageSize)

	session := h.sessions.Create()
	logger := h.logger.With("session_id", session.ID)
	conn := &connection{ws: ws, logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	var pending sync.WaitGroup
	defer func() {
		cancel()
		pending.Wait()
		h.sessions.Delete(session.ID)
	}()

	state, err := h.sessions.State(session.ID)
	if err != nil {
		logger.Error("failed to read new session", "error", err)
		return
	}
	if err := conn.send(stateFrame(state)); err != nil {
		return
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket closed unexpectedly", "error", err)
			} else {
				logger.Debug("websocket client disconnected")
			}
			return
		}

		cmd, err := DecodeCommand(data)
		if err != nil {
			f := errorFrame(err)
			f.ID = commandID(data)
			if conn.send(f) != nil {
				return
			}
			continue
		}

		if cmd.Type == CmdAsk {
			// Answers can take a while; keep reading gestures meanwhile.
			pending.Add(1)
			go func(cmd Command) {
				defer pending.Done()
				var f Frame
				msg, err := h.sessions.Ask(ctx, session.ID, cmd.Question)
				if err != nil {
					f = errorFrame(err)
				} else {
					f = chatFrame(msg)
				}
				f.ID = cmd.ID
				_ = conn.send(f)
			}(cmd)
			continue
		}

		reply := h.dispatch(session.ID, cmd)
		reply.ID = cmd.ID
		if err := conn.send(reply); err != nil {
			return
		}
	}
}

// dispatch runs a synchronous command and builds its reply.
func (h *Handler) dispatch(id string, cmd Command) Frame {
	var (
		st  service.State
		err error
	)

	switch cmd.Type {
	case CmdMoveUp:
		st, err = h.sessions.Apply(id, editor.MoveUp(cmd.Index))
	case CmdMoveDown:
		st, err = h.sessions.Apply(id, editor.MoveDown(cmd.Index))
	case CmdReset:
		mode, parseErr := editor.ParseMode(cmd.Mode)
		if parseErr != nil {
			return errorFrame(parseErr)
		}
		st, err = h.sessions.Apply(id, editor.Reset(mode))
	case CmdStrategy:
		s, parseErr := strategy.Parse(cmd.Strategy)
		if parseErr != nil {
			return errorFrame(parseErr)
		}
		st, err = h.sessions.SelectStrategy(id, s)
	case CmdSegment:
		res, segErr := h.sessions.Segment(id, cmd.Size)
		if segErr != nil {
			return errorFrame(segErr)
		}
		return segmentsFrame(res)
	case CmdState:
		st, err = h.sessions.State(id)
	default:
		err = errors.New("unsupported command")
	}

	if err != nil {
		return errorFrame(err)
	}
	return stateFrame(st)
}
