package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/dinah/internal/chat"
)

// Conversation is what the TUI talks to.
type Conversation interface {
	Send(ctx context.Context, message string) (chat.Reply, error)
	Reset()
}

func sendCmd(ctx context.Context, conv Conversation, message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := conv.Send(ctx, message)
		return replyMsg{reply: reply, err: err}
	}
}
