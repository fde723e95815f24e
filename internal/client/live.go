package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/live"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/service"
)

// ErrServer is returned for error frames.
var ErrServer = errors.New("server error")

const writeWait = 10 * time.Second

// Live is a connected session. One goroutine reads frames and hands each
// reply to the call waiting on its command id, so a pending Ask does not
// hold up moves.
type Live struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	waiters map[string]chan live.Frame

	initial chan live.Frame
	done    chan struct{}
	readErr error

	state service.State
}

// Connect opens a live session and reads its initial state.
func (c *Client) Connect(ctx context.Context) (*Live, error) {
	endpoint, err := c.wsURL("/ws")
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	l := &Live{
		conn:    conn,
		waiters: make(map[string]chan live.Frame),
		initial: make(chan live.Frame, 1),
		done:    make(chan struct{}),
	}
	go l.readLoop()

	select {
	case f := <-l.initial:
		l.state = *f.State
		return l, nil
	case <-l.done:
		conn.Close()
		return nil, l.readErr
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}
}

// SessionID returns the server-side session id.
func (l *Live) SessionID() string {
	return l.state.SessionID
}

// Initial returns the state received on connect.
func (l *Live) Initial() service.State {
	return l.state
}

// Close ends the session.
func (l *Live) Close() error {
	l.writeMu.Lock()
	_ = l.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := l.conn.Close()
	l.writeMu.Unlock()

	<-l.done
	return err
}

// readLoop delivers frames until the connection fails. Frames nobody
// waits for any more (the call timed out) are dropped.
func (l *Live) readLoop() {
	defer close(l.done)

	for {
		var f live.Frame
		if err := l.conn.ReadJSON(&f); err != nil {
			l.readErr = fmt.Errorf("read frame: %w", err)
			return
		}

		if f.ID == "" {
			if f.Type == live.FrameState && f.State != nil {
				select {
				case l.initial <- f:
				default:
				}
			}
			continue
		}

		l.mu.Lock()
		reply, ok := l.waiters[f.ID]
		delete(l.waiters, f.ID)
		l.mu.Unlock()
		if ok {
			reply <- f
		}
	}
}

func (l *Live) register() (string, chan live.Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := strconv.FormatUint(l.nextID, 10)
	reply := make(chan live.Frame, 1)
	l.waiters[id] = reply
	return id, reply
}

func (l *Live) forget(id string) {
	l.mu.Lock()
	delete(l.waiters, id)
	l.mu.Unlock()
}

func (l *Live) write(cmd live.Command) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return l.conn.WriteJSON(cmd)
}

// roundTrip sends cmd and waits for its reply of type want. Error frames
// end the wait.
func (l *Live) roundTrip(ctx context.Context, cmd live.Command, want string) (live.Frame, error) {
	id, reply := l.register()
	defer l.forget(id)

	cmd.ID = id
	if err := l.write(cmd); err != nil {
		return live.Frame{}, fmt.Errorf("send %s: %w", cmd.Type, err)
	}

	select {
	case f := <-reply:
		switch f.Type {
		case want:
			return f, nil
		case live.FrameError:
			return live.Frame{}, fmt.Errorf("%w: %s", ErrServer, f.Error)
		default:
			return live.Frame{}, fmt.Errorf("unexpected %s frame for %s", f.Type, cmd.Type)
		}
	case <-l.done:
		return live.Frame{}, l.readErr
	case <-ctx.Done():
		return live.Frame{}, ctx.Err()
	}
}

func (l *Live) stateCall(ctx context.Context, cmd live.Command) (service.State, error) {
	f, err := l.roundTrip(ctx, cmd, live.FrameState)
	if err != nil {
		return service.State{}, err
	}
	return *f.State, nil
}

// MoveUp swaps the entity at index with its predecessor.
func (l *Live) MoveUp(ctx context.Context, index int) (service.State, error) {
	return l.stateCall(ctx, live.Command{Type: live.CmdMoveUp, Index: index})
}

// MoveDown swaps the entity at index with its successor.
func (l *Live) MoveDown(ctx context.Context, index int) (service.State, error) {
	return l.stateCall(ctx, live.Command{Type: live.CmdMoveDown, Index: index})
}

// Reset rearranges the sequence: perfect, worst or random.
func (l *Live) Reset(ctx context.Context, mode string) (service.State, error) {
	return l.stateCall(ctx, live.Command{Type: live.CmdReset, Mode: mode})
}

// Strategy selects the ranking strategy.
func (l *Live) Strategy(ctx context.Context, name string) (service.State, error) {
	return l.stateCall(ctx, live.Command{Type: live.CmdStrategy, Strategy: name})
}

// State fetches the current state.
func (l *Live) State(ctx context.Context) (service.State, error) {
	return l.stateCall(ctx, live.Command{Type: live.CmdState})
}

// Segment resizes the segmentation.
func (l *Live) Segment(ctx context.Context, size int) (segment.Result, error) {
	f, err := l.roundTrip(ctx, live.Command{Type: live.CmdSegment, Size: size}, live.FrameSegments)
	if err != nil {
		return segment.Result{}, err
	}
	return *f.Segments, nil
}

// Ask sends a question and waits for the answer.
func (l *Live) Ask(ctx context.Context, question string) (chat.Message, error) {
	f, err := l.roundTrip(ctx, live.Command{Type: live.CmdAsk, Question: question}, live.FrameChat)
	if err != nil {
		return chat.Message{}, err
	}
	return *f.Message, nil
}
