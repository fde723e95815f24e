// Package live serves interactive sessions over a websocket: a remote
// presentation layer sends gestures as commands and renders the frames
// it gets back.
package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/service"
)

// Command types sent by clients.
const (
	CmdMoveUp   = "move_up"
	CmdMoveDown = "move_down"
	CmdReset    = "reset"
	CmdStrategy = "strategy"
	CmdSegment  = "segment"
	CmdAsk      = "ask"
	CmdState    = "state"
)

// Frame types sent by the server.
const (
	FrameState    = "state"
	FrameSegments = "segments"
	FrameChat     = "chat"
	FrameError    = "error"
)

// MaxQuestionLen bounds a chat question in bytes.
const MaxQuestionLen = 4096

var validate = validator.New()

// ErrInvalidCommand wraps decoding and validation failures.
var ErrInvalidCommand = errors.New("invalid command")

// Command is a client gesture. ID is optional and echoed on the reply.
type Command struct {
	ID       string `json:"id,omitempty" validate:"max=64"`
	Type     string `json:"type" validate:"required,oneof=move_up move_down reset strategy segment ask state"`
	Index    int    `json:"index,omitempty"`
	Mode     string `json:"mode,omitempty" validate:"required_if=Type reset"`
	Strategy string `json:"strategy,omitempty" validate:"required_if=Type strategy"`
	Size     int    `json:"size,omitempty" validate:"required_if=Type segment,gte=0"`
	Question string `json:"question,omitempty" validate:"required_if=Type ask,max=4096"`
}

// Frame is a server reply. Exactly one payload field is set, matching Type.
// ID repeats the command's ID; the initial state frame has none.
type Frame struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type"`
	State    *service.State  `json:"state,omitempty"`
	Segments *segment.Result `json:"segments,omitempty"`
	Message  *chat.Message   `json:"message,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// DecodeCommand parses and validates a raw command.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if err := validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return Command{}, fmt.Errorf("%w: %s", ErrInvalidCommand, strings.Join(fields, ", "))
		}
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return cmd, nil
}

// commandID recovers the ID of a command that failed to decode.
func commandID(data []byte) string {
	var peek struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(data, &peek) != nil || len(peek.ID) > 64 {
		return ""
	}
	return peek.ID
}

func stateFrame(st service.State) Frame {
	return Frame{Type: FrameState, State: &st}
}

func segmentsFrame(res segment.Result) Frame {
	return Frame{Type: FrameSegments, Segments: &res}
}

func chatFrame(msg chat.Message) Frame {
	return Frame{Type: FrameChat, Message: &msg}
}

func errorFrame(err error) Frame {
	return Frame{Type: FrameError, Error: err.Error()}
}
