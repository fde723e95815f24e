// Package tui is the terminal presentation layer: a tabbed bubbletea
// program over a session Backend.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/segment"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/strategy"
)

const (
	callTimeout = 10 * time.Second
	askTimeout  = 2 * time.Minute
)

// Tab identifies a screen.
type Tab int

const (
	TabOverview Tab = iota
	TabPlayground
	TabStrategies
	TabSegmentation
	TabResults
	TabAssistant
)

var tabNames = []string{"Overview", "Playground", "Strategies", "Segmentation", "Results", "Assistant"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

type stateMsg struct{ state service.State }

type segmentsMsg struct{ split segment.Result }

// answerMsg carries the session after a question; err is the ask failure.
type answerMsg struct {
	state service.State
	err   error
}

type errMsg struct{ err error }

// Model is the bubbletea model. Tab and cursor are local to the model;
// everything else mirrors the backend session.
type Model struct {
	backend Backend
	data    *dataset.Dataset
	theme   Theme

	tab    Tab
	cursor int

	state  service.State
	loaded bool
	split  segment.Result

	input textinput.Model
	bar   progress.Model

	err      error
	quitting bool
}

// New creates a model. data supplies the reference tables.
func New(backend Backend, data *dataset.Dataset) Model {
	input := textinput.New()
	input.Placeholder = "Ask about input order bias..."
	input.CharLimit = 4096

	return Model{
		backend: backend,
		data:    data,
		theme:   DefaultTheme,
		input:   input,
		bar: progress.New(
			progress.WithDefaultBlend(),
			progress.WithWidth(30),
		),
	}
}

// Init loads the session state and the default segmentation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadState(), m.resize(segment.DefaultSize))
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		key := msg.String()
		if m.tab == TabAssistant && !isNavigationKey(key) {
			if key == "enter" {
				return m, m.submit()
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		cmd := m.handleKey(key)
		return m, cmd

	case stateMsg:
		m.setState(msg.state)
		m.err = nil
		return m, nil

	case segmentsMsg:
		m.split = msg.split
		m.err = nil
		return m, nil

	case answerMsg:
		m.setState(msg.state)
		m.err = msg.err
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m *Model) setState(st service.State) {
	m.state = st
	m.loaded = true
	m.cursor = min(m.cursor, max(len(m.state.Items)-1, 0))
}

func isNavigationKey(key string) bool {
	switch key {
	case "tab", "shift+tab", "ctrl+c", "esc":
		return true
	}
	return false
}

// handleKey applies a key outside the assistant's input.
func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit
	case "tab":
		m.setTab(Tab((int(m.tab) + 1) % len(tabNames)))
		return nil
	case "shift+tab":
		m.setTab(Tab((int(m.tab) + len(tabNames) - 1) % len(tabNames)))
		return nil
	case "esc":
		m.setTab(TabOverview)
		return nil
	case "1", "2", "3", "4", "5", "6":
		m.setTab(Tab(key[0] - '1'))
		return nil
	}

	switch m.tab {
	case TabPlayground:
		return m.playgroundKey(key)
	case TabStrategies:
		return m.strategiesKey(key)
	case TabSegmentation:
		return m.segmentationKey(key)
	}
	return nil
}

func (m *Model) setTab(t Tab) {
	m.tab = t
	if t == TabAssistant {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) playgroundKey(key string) tea.Cmd {
	b := m.backend
	last := len(m.state.Items) - 1
	switch key {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = max(min(m.cursor+1, last), 0)
	case "shift+up", "K":
		index := m.cursor
		m.cursor = max(m.cursor-1, 0)
		return m.call(func(ctx context.Context) (service.State, error) {
			return b.MoveUp(ctx, index)
		})
	case "shift+down", "J":
		index := m.cursor
		m.cursor = max(min(m.cursor+1, last), 0)
		return m.call(func(ctx context.Context) (service.State, error) {
			return b.MoveDown(ctx, index)
		})
	case "p", "w", "r":
		mode := map[string]string{"p": "perfect", "w": "worst", "r": "random"}[key]
		return m.call(func(ctx context.Context) (service.State, error) {
			return b.Reset(ctx, mode)
		})
	}
	return nil
}

func (m *Model) strategiesKey(key string) tea.Cmd {
	all := strategy.All()
	i := max(slices.Index(all, m.state.Strategy.Strategy), 0)
	switch key {
	case "left", "h":
		i = (i + len(all) - 1) % len(all)
	case "right", "l":
		i = (i + 1) % len(all)
	default:
		return nil
	}
	b, name := m.backend, string(all[i])
	return m.call(func(ctx context.Context) (service.State, error) {
		return b.Strategy(ctx, name)
	})
}

func (m *Model) segmentationKey(key string) tea.Cmd {
	size := m.split.Size
	switch key {
	case "+", "=", "right", "l":
		size++
	case "-", "left", "h":
		size--
	default:
		return nil
	}
	size = max(segment.MinSize, min(size, segment.MaxSize))
	if size == m.split.Size {
		return nil
	}
	return m.resize(size)
}

// submit sends the input as a question. Input is ignored unless the
// session's conversation is idle.
func (m *Model) submit() tea.Cmd {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.state.ChatState != chat.StateIdle {
		return nil
	}
	m.input.Reset()

	// Mirror the conversation's transition until the backend reports back.
	m.state.ChatState = chat.StateAwaiting
	m.state.Messages = append(slices.Clone(m.state.Messages), chat.Message{Role: chat.RoleUser, Text: question})

	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		_, askErr := backend.Ask(ctx, question)
		cancel()

		ctx, cancel = context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		st, err := backend.State(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return answerMsg{state: st, err: askErr}
	}
}

func (m Model) call(fn func(ctx context.Context) (service.State, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		st, err := fn(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return stateMsg{state: st}
	}
}

func (m Model) loadState() tea.Cmd {
	return m.call(m.backend.State)
}

func (m Model) resize(size int) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		res, err := backend.Segment(ctx, size)
		if err != nil {
			return errMsg{err: err}
		}
		return segmentsMsg{split: res}
	}
}

// View renders the current tab.
func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

// Run starts the program and closes the backend when it ends.
func Run(backend Backend, data *dataset.Dataset, opts ...tea.ProgramOption) error {
	defer backend.Close()

	p := tea.NewProgram(New(backend, data), opts...)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}
	if m, ok := finalModel.(Model); ok && m.err != nil && !m.quitting {
		return m.err
	}
	return nil
}
