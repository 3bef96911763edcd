package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/dinah/internal/dialogue"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.theme.Waiting.Render("Carregando...")
	}

	sections := []string{
		m.theme.Title.Render("💰 Dinah") + "  " + m.theme.Subtitle.Render("suas finanças numa conversa"),
		m.viewport.View(),
		m.renderOptions(),
		m.renderStatus(),
		m.theme.InputBox.Width(max(m.width-2, 10)).Render(m.input.View()),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHistory() string {
	wrap := lipgloss.NewStyle()
	if m.width > 0 {
		wrap = wrap.Width(m.width)
	}

	blocks := make([]string, 0, len(m.history))
	for _, e := range m.history {
		blocks = append(blocks, wrap.Render(m.renderEntry(e)))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderEntry(e entry) string {
	switch e.from {
	case speakerUser:
		return m.theme.UserMessage.Render("você: ") + e.text
	case speakerSystem:
		return m.theme.Subtitle.Render(e.text)
	}

	var style lipgloss.Style
	switch e.status {
	case dialogue.StatusSuccess:
		style = m.theme.Success
	case dialogue.StatusClarification, dialogue.StatusConfirmation:
		style = m.theme.Question
	default:
		style = m.theme.Error
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Dinah: "))
	b.WriteString(style.Render(e.text))
	for _, s := range e.suggestions {
		b.WriteString("\n")
		b.WriteString(m.theme.Suggestion.Render("→ " + s))
	}
	return b.String()
}

func (m Model) renderOptions() string {
	if len(m.options) == 0 {
		return ""
	}
	buttons := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		label := fmt.Sprintf("%d. %s", i+1, opt.Name)
		if i == m.selected {
			buttons = append(buttons, m.theme.SelectedOption.Render(label))
			continue
		}
		buttons = append(buttons, m.theme.Option.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

func (m Model) renderStatus() string {
	if m.waiting {
		return m.theme.Waiting.Render("Dinah está pensando...")
	}
	return ""
}
