// Package chat runs a conversation: it feeds each message to the dialogue
// engine with fresh ledger state and executes the resulting action.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/dialogue"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/service"
)

// MaxRecent bounds how many entries of the conversation stay correctable.
const MaxRecent = 20

// Reply is the assistant's answer to one message.
type Reply struct {
	Status      dialogue.Status
	Action      dialogue.Action
	Text        string
	Options     []dialogue.Option
	Suggestions []string
}

// Session is one user's conversation. Turns are serialized.
type Session struct {
	clock  func() time.Time
	ledger service.Ledger
	engine *dialogue.Engine
	state  *dialogue.Session
	exec   *Executor
	convo  dialogue.ConversationContext
	recent []model.Transaction
	mu     sync.Mutex
}

type sessionOptions struct {
	clock      func() time.Time
	summarizer service.Summarizer
	retry      service.RetryOptions
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithClock sets the clock used for summary requests. It should match the
// engine's clock.
func WithClock(clock func() time.Time) Option {
	return func(o *sessionOptions) {
		o.clock = clock
	}
}

// WithSummarizer sets the collaborator answering period queries.
func WithSummarizer(s service.Summarizer) Option {
	return func(o *sessionOptions) {
		o.summarizer = s
	}
}

// WithRetryOptions sets how busy-database writes are retried.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(o *sessionOptions) {
		o.retry = opts
	}
}

// NewSession starts an idle conversation.
func NewSession(engine *dialogue.Engine, ledger service.Ledger, opts ...Option) *Session {
	o := sessionOptions{clock: time.Now, retry: common.DefaultRetryOptions()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		clock:  o.clock,
		ledger: ledger,
		engine: engine,
		state:  engine.NewSession(),
		exec:   NewExecutor(ledger, o.summarizer, o.retry),
	}
}

// Send processes one message. The error is only set when the ledger state
// needed for the turn could not be loaded; failures of the action itself
// come back as a StatusError reply.
func (s *Session) Send(ctx context.Context, message string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.ledger.GetAccounts(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load accounts: %w", err)
	}
	bills, err := s.ledger.GetRecurringBills(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load fixed bills: %w", err)
	}

	slog.Debug("Processing message", "message", message)
	res := s.engine.ProcessTurn(ctx, s.state, dialogue.TurnInput{
		Context:            &s.convo,
		Message:            message,
		Accounts:           accounts,
		RecentTransactions: s.recent,
		FixedBills:         bills,
	})

	reply := Reply{
		Status:      res.Status,
		Action:      res.Action,
		Text:        res.Response,
		Options:     res.Options,
		Suggestions: res.Suggestions,
	}
	if res.Status != dialogue.StatusSuccess || res.Data == nil {
		return reply, nil
	}

	out, err := s.exec.Execute(ctx, res.Data, accounts, s.clock())
	s.remember(out)
	if err != nil {
		common.LogError(err, "Action failed", common.Fields{"action": res.Action})
		reply.Status = dialogue.StatusError
		reply.Text = common.UserMessage(err, withCause(msgLedgerFailure, err))
		return reply, nil
	}

	slog.Info("Action executed", "action", res.Action, "intent", res.Intent)
	if out.Text != "" {
		reply.Text = out.Text
	}
	return reply, nil
}

// remember keeps the correctable entries in step with what the ledger did.
func (s *Session) remember(out Outcome) {
	if len(out.Removed) > 0 {
		kept := s.recent[:0]
		for _, t := range s.recent {
			if !containsID(out.Removed, t.ID) {
				kept = append(kept, t)
			}
		}
		s.recent = kept
	}
	for _, u := range out.Updated {
		for i := range s.recent {
			if s.recent[i].ID == u.ID {
				s.recent[i] = u
			}
		}
	}
	s.recent = append(s.recent, out.Booked...)
	if len(s.recent) > MaxRecent {
		s.recent = append([]model.Transaction(nil), s.recent[len(s.recent)-MaxRecent:]...)
	}
}

// Pending reports whether the session is waiting for an answer.
func (s *Session) Pending() bool {
	return s.state.Pending() != nil
}

// Recent returns the entries the user can still correct, oldest first.
func (s *Session) Recent() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.recent...)
}

// Reset forgets the conversation: context, pending question and the
// correctable entries.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convo.Reset()
	s.state.Reset()
	s.recent = nil
}

// Format renders a reply as plain text with numbered options.
func Format(r Reply) string {
	var b strings.Builder
	b.WriteString(r.Text)
	for i, opt := range r.Options {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, opt.Name)
	}
	for _, s := range r.Suggestions {
		b.WriteString("\n  → ")
		b.WriteString(s)
	}
	return b.String()
}

// OptionAnswer maps a numbered answer ("2") to the option id it selects.
// A single option is never selected by number, since the question it
// belongs to may expect a number ("Qual o saldo?" with "Começar zerada").
// Other input is returned unchanged.
func OptionAnswer(input string, options []dialogue.Option) string {
	if len(options) < 2 {
		return input
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err == nil && n >= 1 && n <= len(options) {
		return options[n-1].ID
	}
	return input
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
