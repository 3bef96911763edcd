package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the chat full screen until the user quits or ctx is done.
func Run(ctx context.Context, conv Conversation, opts ...Option) error {
	p := tea.NewProgram(
		New(ctx, conv, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat screen failed: %w", err)
	}
	return nil
}
