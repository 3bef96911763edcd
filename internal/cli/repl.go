package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/dinah/internal/chat"
	"github.com/Veraticus/dinah/internal/dialogue"
)

// REPL commands handled before the message reaches the assistant.
const (
	CommandQuit  = "/sair"
	CommandClear = "/limpar"
)

// Conversation is what the REPL talks to.
type Conversation interface {
	Send(ctx context.Context, message string) (chat.Reply, error)
	Reset()
}

// REPL runs the chat on a terminal.
type REPL struct {
	in   *NonBlockingReader
	out  io.Writer
	conv Conversation
}

// NewREPL creates a REPL reading from in and writing to out.
func NewREPL(conv Conversation, in io.Reader, out io.Writer) *REPL {
	return &REPL{in: NewNonBlockingReader(in), out: out, conv: conv}
}

// Run reads messages until the input ends, the user quits or ctx is done.
// A number answers the question on screen by picking that option.
func (r *REPL) Run(ctx context.Context) error {
	r.println(FormatTitle("Dinah"))
	r.println(SubtleStyle.Render(fmt.Sprintf("Digite %q para encerrar ou %q para recomeçar a conversa.", CommandQuit, CommandClear)))

	var options []dialogue.Option
	for {
		r.print(FormatPrompt("você"))
		line, err := r.in.ReadLine(ctx)
		switch {
		case errors.Is(err, ErrInputCancelled), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case CommandQuit:
			r.println(FormatInfo("Até logo! " + WalletIcon))
			return nil
		case CommandClear:
			r.conv.Reset()
			options = nil
			r.println(FormatInfo("Conversa reiniciada."))
			continue
		}

		reply, err := r.conv.Send(ctx, chat.OptionAnswer(line, options))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("Failed to process message", "error", err)
			r.println(FormatError("Não consegui acessar seus dados agora. Tente de novo."))
			continue
		}
		options = reply.Options
		r.println(RenderReply(reply))
	}
}

// RenderReply styles a reply by status, numbering its options.
func RenderReply(reply chat.Reply) string {
	var b strings.Builder
	switch reply.Status {
	case dialogue.StatusSuccess:
		b.WriteString(FormatSuccess(reply.Text))
	case dialogue.StatusClarification, dialogue.StatusConfirmation:
		b.WriteString(FormatQuestion(reply.Text))
	default:
		b.WriteString(FormatError(reply.Text))
	}
	for i, opt := range reply.Options {
		b.WriteByte('\n')
		b.WriteString(OptionStyle.Render(fmt.Sprintf("%d. %s", i+1, opt.Name)))
	}
	for _, s := range reply.Suggestions {
		b.WriteByte('\n')
		b.WriteString(SubtleStyle.Render("→ " + s))
	}
	return b.String()
}

func (r *REPL) print(s string) {
	if _, err := fmt.Fprint(r.out, s); err != nil {
		slog.Debug("Failed to write output", "error", err)
	}
}

func (r *REPL) println(s string) {
	r.print(s + "\n")
}
