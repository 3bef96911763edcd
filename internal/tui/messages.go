package tui

import "github.com/Veraticus/dinah/internal/chat"

// replyMsg carries the assistant's answer back to the model.
type replyMsg struct {
	err   error
	reply chat.Reply
}
