package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{name: "move down", input: `{"type":"move_down","index":2}`, want: Command{Type: CmdMoveDown, Index: 2}},
		{name: "move up at zero", input: `{"type":"move_up"}`, want: Command{Type: CmdMoveUp}},
		{name: "reset", input: `{"type":"reset","mode":"worst"}`, want: Command{Type: CmdReset, Mode: "worst"}},
		{name: "reset without mode", input: `{"type":"reset"}`, wantErr: true},
		{name: "strategy", input: `{"type":"strategy","strategy":"size"}`, want: Command{Type: CmdStrategy, Strategy: "size"}},
		{name: "strategy without name", input: `{"type":"strategy"}`, wantErr: true},
		{name: "segment", input: `{"type":"segment","size":4}`, want: Command{Type: CmdSegment, Size: 4}},
		{name: "segment without size", input: `{"type":"segment"}`, wantErr: true},
		{name: "ask", input: `{"type":"ask","question":"why?"}`, want: Command{Type: CmdAsk, Question: "why?"}},
		{name: "ask without question", input: `{"type":"ask"}`, wantErr: true},
		{name: "state", input: `{"type":"state"}`, want: Command{Type: CmdState}},
		{name: "with id", input: `{"id":"7","type":"state"}`, want: Command{ID: "7", Type: CmdState}},
		{name: "unknown type", input: `{"type":"shuffle"}`, wantErr: true},
		{name: "missing type", input: `{}`, wantErr: true},
		{name: "not json", input: `move_up`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCommand_QuestionTooLong(t *testing.T) {
	long := make([]byte, MaxQuestionLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := DecodeCommand([]byte(`{"type":"ask","question":"` + string(long) + `"}`))
	require.ErrorIs(t, err, ErrInvalidCommand)
	assert.Contains(t, err.Error(), "question")
}

func TestCommandID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid command keeps id", `{"id":"3","type":"shuffle"}`, "3"},
		{"no id", `{"type":"shuffle"}`, ""},
		{"not json", `move_up`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandID([]byte(tt.input)))
		})
	}
}
