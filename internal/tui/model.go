// Package tui is the full-screen chat: a scrolling history, the option
// buttons of the current question and an input line.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/dinah/internal/chat"
	"github.com/Veraticus/dinah/internal/dialogue"
	"github.com/Veraticus/dinah/internal/tui/themes"
)

const (
	msgLoadFailure = "Não consegui acessar seus dados agora. Tente de novo."
	msgCleared     = "Conversa reiniciada."

	// Lines taken by everything around the history viewport.
	chromeHeight = 10
)

type speaker int

const (
	speakerUser speaker = iota
	speakerDinah
	speakerSystem
)

type entry struct {
	text        string
	status      dialogue.Status
	suggestions []string
	from        speaker
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx      context.Context
	conv     Conversation
	theme    themes.Theme
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	history  []entry
	options  []dialogue.Option
	selected int
	width    int
	waiting  bool
	ready    bool
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the colors.
func WithTheme(theme themes.Theme) Option {
	return func(m *Model) {
		m.theme = theme
	}
}

// WithKeyMap sets the key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(m *Model) {
		m.keys = keys
	}
}

// New creates the chat model. ctx bounds every message sent.
func New(ctx context.Context, conv Conversation, opts ...Option) Model {
	input := textinput.New()
	input.Placeholder = "gastei 50 no almoço no nubank"
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	m := Model{
		ctx:      ctx,
		conv:     conv,
		theme:    themes.Default,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		viewport: viewport.New(0, 0),
		selected: -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		return m.handleReply(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Clear):
		m.conv.Reset()
		m.history = []entry{{from: speakerSystem, text: msgCleared}}
		m.options = nil
		m.selected = -1
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NextOption):
		if len(m.options) > 0 {
			m.selected = (m.selected + 1) % len(m.options)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevOption):
		if len(m.options) > 0 {
			m.selected = (m.selected - 1 + len(m.options)) % len(m.options)
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed text, or the highlighted option when nothing is typed.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	var message, shown string
	switch {
	case text == "" && m.selected >= 0 && m.selected < len(m.options):
		opt := m.options[m.selected]
		message, shown = opt.ID, opt.Name
	case text == "":
		return m, nil
	default:
		message, shown = chat.OptionAnswer(text, m.options), text
	}

	m.history = append(m.history, entry{from: speakerUser, text: shown})
	m.input.Reset()
	m.options = nil
	m.selected = -1
	m.waiting = true
	m.refresh()
	return m, sendCmd(m.ctx, m.conv, message)
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	if msg.err != nil {
		if m.ctx.Err() != nil {
			m.quitting = true
			return m, tea.Quit
		}
		slog.Error("Failed to process message", "error", msg.err)
		m.history = append(m.history, entry{from: speakerDinah, status: dialogue.StatusError, text: msgLoadFailure})
		m.refresh()
		return m, nil
	}

	m.history = append(m.history, entry{
		from:        speakerDinah,
		status:      msg.reply.Status,
		text:        msg.reply.Text,
		suggestions: msg.reply.Suggestions,
	})
	m.options = msg.reply.Options
	m.selected = -1
	m.refresh()
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 3)
	m.input.Width = max(width-8, 10)
	m.help.Width = width
	m.ready = true
	m.refresh()
}

// refresh re-renders the history and scrolls to the newest entry.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
