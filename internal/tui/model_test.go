package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/chat"
	"github.com/Veraticus/dinah/internal/dialogue"
)

type scriptedConversation struct {
	err     error
	replies []chat.Reply
	sent    []string
	resets  int
}

func (s *scriptedConversation) Send(_ context.Context, message string) (chat.Reply, error) {
	s.sent = append(s.sent, message)
	if s.err != nil {
		return chat.Reply{}, s.err
	}
	if len(s.replies) == 0 {
		return chat.Reply{Status: dialogue.StatusSuccess, Text: "ok"}, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func (s *scriptedConversation) Reset() { s.resets++ }

func newTestModel(conv Conversation) Model {
	m := New(context.Background(), conv)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	return updated.(Model), cmd
}

// send types text, presses enter and feeds the reply back into the model.
func send(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)

	updated, _ := m.Update(cmd())
	return updated.(Model)
}

var accountQuestion = chat.Reply{
	Status:  dialogue.StatusClarification,
	Text:    "De qual conta?",
	Options: []dialogue.Option{{Name: "Nubank", ID: "acc-1"}, {Name: "Itaú", ID: "acc-2"}},
}

func TestModel_SendShowsReply(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{replies: []chat.Reply{accountQuestion}}
	m := newTestModel(conv)

	m = send(t, m, "gastei 50 no almoço")

	assert.Equal(t, []string{"gastei 50 no almoço"}, conv.sent)
	assert.False(t, m.waiting)
	assert.Empty(t, m.input.Value())
	assert.Len(t, m.history, 2)
	assert.Equal(t, accountQuestion.Options, m.options)

	view := m.View()
	assert.Contains(t, view, "gastei 50 no almoço")
	assert.Contains(t, view, "De qual conta?")
	assert.Contains(t, view, "1. Nubank")
	assert.Contains(t, view, "2. Itaú")
}

func TestModel_TabSelectsOption(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{replies: []chat.Reply{
		accountQuestion,
		{Status: dialogue.StatusSuccess, Text: "Gasto registrado."},
	}}
	m := newTestModel(conv)
	m = send(t, m, "gastei 50 no almoço")

	m, _ = press(t, m, tea.KeyTab)
	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, 1, m.selected)
	m, _ = press(t, m, tea.KeyTab)
	assert.Equal(t, 0, m.selected, "selection wraps around")
	m, _ = press(t, m, tea.KeyShiftTab)
	assert.Equal(t, 1, m.selected)

	m = send(t, m, "")

	assert.Equal(t, []string{"gastei 50 no almoço", "acc-2"}, conv.sent)
	assert.Equal(t, "Itaú", m.history[2].text)
	assert.Empty(t, m.options)
	assert.Equal(t, -1, m.selected)
}

func TestModel_NumberAnswersQuestion(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{replies: []chat.Reply{accountQuestion}}
	m := newTestModel(conv)
	m = send(t, m, "gastei 50 no almoço")

	send(t, m, "1")

	assert.Equal(t, []string{"gastei 50 no almoço", "acc-1"}, conv.sent)
}

func TestModel_EmptyInputSendsNothing(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{}
	m := newTestModel(conv)

	m, cmd := press(t, m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, m.history)
	assert.Empty(t, conv.sent)
}

func TestModel_IgnoresEnterWhileWaiting(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{}
	m := newTestModel(conv)

	m.input.SetValue("qual meu saldo?")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m.input.SetValue("de novo")
	_, second := press(t, m, tea.KeyEnter)
	assert.Nil(t, second)
	assert.Contains(t, m.View(), "Dinah está pensando...")
}

func TestModel_SendErrorShowsFriendlyMessage(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{err: errors.New("database is locked")}
	m := newTestModel(conv)

	m = send(t, m, "qual meu saldo?")

	require.Len(t, m.history, 2)
	assert.Equal(t, msgLoadFailure, m.history[1].text)
	assert.NotContains(t, m.View(), "database is locked")
}

func TestModel_SendErrorAfterCancelQuits(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	conv := &scriptedConversation{err: context.Canceled}
	m := New(ctx, conv)
	cancel()

	updated, cmd := m.Update(replyMsg{err: context.Canceled})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, updated.(Model).quitting)
}

func TestModel_ClearResetsConversation(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{replies: []chat.Reply{accountQuestion}}
	m := newTestModel(conv)
	m = send(t, m, "gastei 50 no almoço")

	m, _ = press(t, m, tea.KeyCtrlL)

	assert.Equal(t, 1, conv.resets)
	assert.Empty(t, m.options)
	require.Len(t, m.history, 1)
	assert.Equal(t, msgCleared, m.history[0].text)
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()
	m := newTestModel(&scriptedConversation{})

	m, cmd := press(t, m, tea.KeyEsc)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModel_SuggestionsRendered(t *testing.T) {
	t.Parallel()
	conv := &scriptedConversation{replies: []chat.Reply{{
		Status:      dialogue.StatusError,
		Text:        "Você ainda não tem contas.",
		Suggestions: []string{"criar conta Nubank"},
	}}}
	m := newTestModel(conv)

	m = send(t, m, "gastei 10")

	assert.Contains(t, m.View(), "→ criar conta Nubank")
}

func TestModel_ViewBeforeResize(t *testing.T) {
	t.Parallel()
	m := New(context.Background(), &scriptedConversation{})
	assert.Contains(t, m.View(), "Carregando...")
}
