// Package chat models the question-and-answer collaborator: a running
// message log plus an explicit state machine that allows a single request
// in flight at a time.
package chat

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Role is the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// State of a conversation.
type State string

const (
	StateIdle     State = "idle"
	StateAwaiting State = "awaiting_response"
)

const (
	Greeting = `Hello! I know the "Order Matters!" study well. Ask me how input order affects LLMs in software fault localization.`
	Apology  = "I apologize, I couldn't generate a response."
	Failure  = "Sorry, I encountered an error connecting to the language model."
)

var (
	ErrBusy          = errors.New("a question is already awaiting a response")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNotAwaiting   = errors.New("no question is awaiting a response")
)

// Message is one entry of the log.
type Message struct {
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error,omitempty"`
}

// Conversation is safe for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	state    State
	messages []Message
}

// NewConversation starts idle with the greeting.
func NewConversation() *Conversation {
	return &Conversation{
		state:    StateIdle,
		messages: []Message{{Role: RoleModel, Text: Greeting}},
	}
}

// Submit moves Idle to Awaiting and appends the question. It returns the
// log as it was before the question.
func (c *Conversation) Submit(question string) ([]Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return nil, ErrBusy
	}

	history := slices.Clone(c.messages)
	c.messages = append(c.messages, Message{Role: RoleUser, Text: question})
	c.state = StateAwaiting
	return history, nil
}

// Receive moves Awaiting to Idle and appends the answer. A blank answer is
// replaced by an apology.
func (c *Conversation) Receive(answer string) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaiting {
		return Message{}, ErrNotAwaiting
	}

	if strings.TrimSpace(answer) == "" {
		answer = Apology
	}
	msg := Message{Role: RoleModel, Text: answer}
	c.messages = append(c.messages, msg)
	c.state = StateIdle
	return msg, nil
}

// Fail moves Awaiting to Idle and appends a terminal error message. The
// question is not retried.
func (c *Conversation) Fail(cause error) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaiting {
		return Message{}, fmt.Errorf("%w: %v", ErrNotAwaiting, cause)
	}

	msg := Message{Role: RoleModel, Text: Failure, IsError: true}
	c.messages = append(c.messages, msg)
	c.state = StateIdle
	return msg, nil
}

// State returns the current state.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Snapshot returns the state and a copy of the log, read together.
func (c *Conversation) Snapshot() (State, []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
