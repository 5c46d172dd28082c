// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui provides the interactive research form for the terminal.
// It uses the Charm Bubble Tea framework; all state lives in a
// submit.Handler and the model only mirrors it for display.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/research-console/internal/form"
	"github.com/pdiddy/research-console/internal/render"
	"github.com/pdiddy/research-console/internal/submit"
	"github.com/pdiddy/research-console/pkg/types"
)

// focus positions, in tab order.
const (
	focusQuery = iota
	focusQuestion
	focusAPIKey
	focusMaxResults
	focusModel
	focusSubmit
	focusCount
)

// stateMsg carries a state published by the handler.
type stateMsg form.State

// submittedMsg is returned when a submission finishes.
type submittedMsg struct {
	state form.State
	err   error
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "previous option"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next option"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter", "ctrl+s"),
		key.WithHelp("enter", "submit"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear notice"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// Model is the Bubble Tea model of the research form.
type Model struct {
	handler *submit.Handler
	updates chan form.State
	ctx     context.Context

	state form.State

	query    textinput.Model
	question textarea.Model
	apiKey   textinput.Model
	spinner  spinner.Model

	focus int

	// notice is shown under the form when the input surface refuses a
	// submission (e.g. a required field is empty).
	notice string

	width    int
	quitting bool
}

// NewModel returns a form bound to h. The handler's current state seeds
// the inputs.
func NewModel(ctx context.Context, h *submit.Handler) Model {
	updates := make(chan form.State, 1)
	h.Subscribe(func(s form.State) { publishLatest(updates, s) })

	s := h.State()

	query := textinput.New()
	query.Placeholder = "e.g., quantum computing, NLP transformers"
	query.CharLimit = 256
	query.Width = 60
	query.SetValue(s.Params.Query)

	question := textarea.New()
	question.Placeholder = "What specific question do you want answered?"
	question.SetWidth(62)
	question.SetHeight(3)
	question.ShowLineNumbers = false
	question.SetValue(s.Params.ResearchQuestion)

	apiKey := textinput.New()
	apiKey.Placeholder = "Enter your Groq API key"
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'
	apiKey.CharLimit = 256
	apiKey.Width = 60
	apiKey.SetValue(s.Params.GroqAPIKey)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = render.TitleStyle()

	m := Model{
		handler:  h,
		updates:  updates,
		ctx:      ctx,
		state:    s,
		query:    query,
		question: question,
		apiKey:   apiKey,
		spinner:  sp,
	}
	m.applyFocus()
	return m
}

// publishLatest leaves only the newest state in ch. The handler calls it
// with its lock held, so sends never race each other.
func publishLatest(ch chan form.State, s form.State) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}

func waitForState(ch chan form.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

// Init starts listening for handler updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForState(m.updates))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		wasLoading := m.state.Loading
		m.state = form.State(msg)
		if m.state.Loading && !wasLoading {
			// Ticks stop while idle; restart them when a submission begins.
			return m, tea.Batch(waitForState(m.updates), m.spinner.Tick)
		}
		return m, waitForState(m.updates)

	case submittedMsg:
		m.state = msg.state
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		m.focus = (m.focus + 1) % focusCount
		m.applyFocus()
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.focus = (m.focus + focusCount - 1) % focusCount
		m.applyFocus()
		return m, nil

	case key.Matches(msg, keys.Clear):
		m.notice = ""
		return m, nil

	case key.Matches(msg, keys.Left) && m.onSelector():
		return m.cycle(-1), nil

	case key.Matches(msg, keys.Right) && m.onSelector():
		return m.cycle(1), nil

	case key.Matches(msg, keys.Submit) && (m.focus == focusSubmit || msg.String() == "ctrl+s"):
		return m.startSubmit()
	}

	return m.updateFocused(msg)
}

func (m Model) onSelector() bool {
	return m.focus == focusMaxResults || m.focus == focusModel
}

// cycle moves the focused selector by delta options.
func (m Model) cycle(delta int) Model {
	switch m.focus {
	case focusMaxResults:
		opts := types.AllowedMaxResults
		i := indexOf(len(opts), func(i int) bool { return opts[i] == m.state.Params.MaxResults })
		m.setField(form.FieldMaxResults, strconv.Itoa(int(opts[wrap(i+delta, len(opts))])))
	case focusModel:
		opts := types.AllowedModels
		i := indexOf(len(opts), func(i int) bool { return opts[i] == m.state.Params.ModelName })
		m.setField(form.FieldModelName, string(opts[wrap(i+delta, len(opts))]))
	}
	return m
}

func indexOf(n int, match func(int) bool) int {
	for i := 0; i < n; i++ {
		if match(i) {
			return i
		}
	}
	return 0
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// updateFocused forwards msg to the focused text input and mirrors its
// value into the handler.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusQuery:
		m.query, cmd = m.query.Update(msg)
		m.setField(form.FieldQuery, m.query.Value())
	case focusQuestion:
		m.question, cmd = m.question.Update(msg)
		m.setField(form.FieldResearchQuestion, m.question.Value())
	case focusAPIKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
		m.setField(form.FieldGroqAPIKey, m.apiKey.Value())
	}
	return m, cmd
}

// setField writes value through the handler when it differs from the
// current state.
func (m *Model) setField(f form.Field, value string) {
	if m.state.Value(f) == value {
		return
	}
	if err := m.handler.Update(f, value); err != nil {
		m.notice = err.Error()
		return
	}
	m.state = m.handler.State()
}

func (m *Model) applyFocus() {
	m.query.Blur()
	m.question.Blur()
	m.apiKey.Blur()
	switch m.focus {
	case focusQuery:
		m.query.Focus()
	case focusQuestion:
		m.question.Focus()
	case focusAPIKey:
		m.apiKey.Focus()
	}
}

// startSubmit validates the form the way an input surface does and hands
// the submission to the handler.
func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	if !m.state.CanSubmit() {
		return m, nil
	}
	if err := m.state.Validate(); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	return m, m.submit()
}

func (m Model) submit() tea.Cmd {
	h, ctx := m.handler, m.ctx
	return func() tea.Msg {
		s, err := h.Submit(ctx)
		if errors.Is(err, submit.ErrInFlight) {
			return nil
		}
		return submittedMsg{state: s, err: err}
	}
}

// View renders the form and the outcome panels.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(render.TitleStyle().Render("Research Assistant") + "\n")
	sb.WriteString(render.MutedStyle().Render("AI-powered research using arXiv papers") + "\n\n")

	sb.WriteString(m.label(focusQuery, form.FieldQuery) + "\n" + m.query.View() + "\n\n")
	sb.WriteString(m.label(focusQuestion, form.FieldResearchQuestion) + "\n" + m.question.View() + "\n\n")
	sb.WriteString(m.label(focusAPIKey, form.FieldGroqAPIKey) + "\n" + m.apiKey.View() + "\n\n")

	v := render.Build(m.state)
	for _, f := range v.Form.Fields {
		switch f.Field {
		case form.FieldMaxResults:
			sb.WriteString(m.label(focusMaxResults, f.Field) + "  " + selector(f.Value, m.focus == focusMaxResults) + "\n")
		case form.FieldModelName:
			sb.WriteString(m.label(focusModel, f.Field) + "  " + selector(f.Value, m.focus == focusModel) + "\n")
		}
	}
	sb.WriteString("\n")

	button := render.Button(v.Form.SubmitLabel, v.Form.SubmitDisabled)
	if m.state.Loading {
		button = m.spinner.View() + " " + button
	} else if m.focus == focusSubmit {
		button = "> " + button
	}
	sb.WriteString(button + "\n")

	if m.notice != "" {
		sb.WriteString("\n" + render.MutedStyle().Render(m.notice) + "\n")
	}
	sb.WriteString(render.Panels(v))
	sb.WriteString("\n" + render.MutedStyle().Render("tab/shift+tab: move • ←/→: change option • enter: submit • ctrl+c: quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}

func (m Model) label(pos int, f form.Field) string {
	l := render.LabelStyle().Render(render.Label(f))
	if m.focus == pos {
		return "> " + l
	}
	return "  " + l
}

func selector(value string, focused bool) string {
	if focused {
		return "‹ " + value + " ›"
	}
	return "  " + value
}
