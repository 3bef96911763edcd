package dialogue

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

// Config holds the engine tunables.
type Config struct {
	// ConfirmationThreshold is the amount above which expenses, incomes and
	// transfers need an explicit yes.
	ConfirmationThreshold float64
	// PendingTTL clears a pending action older than this. Zero never expires.
	PendingTTL time.Duration
	// LearnedHistory bounds how many words each session's scorer remembers.
	LearnedHistory int
	// AbandonConfidence is the confidence a new intent needs to replace a
	// pending question the user did not answer.
	AbandonConfidence float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ConfirmationThreshold: 1000,
		PendingTTL:            0,
		LearnedHistory:        500,
		AbandonConfidence:     0.7,
	}
}

// Engine processes chat turns. It holds no conversation state; that lives
// in a Session.
type Engine struct {
	clock  extract.Clock
	config Config
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the engine's notion of now.
func WithClock(clock extract.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an engine with the default configuration.
func New(opts ...EngineOption) *Engine {
	return NewEngine(DefaultConfig(), opts...)
}

// NewEngine creates an engine with a custom configuration.
func NewEngine(config Config, opts ...EngineOption) *Engine {
	e := &Engine{clock: time.Now, config: config}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session is the engine state of one conversation: the pending action and
// the learned classification bias. Sessions must not be shared between users.
type Session struct {
	armedAt    time.Time
	pending    PendingAction
	classifier *intent.Classifier
	mu         sync.Mutex
}

// NewSession creates an idle session.
func (e *Engine) NewSession() *Session {
	return &Session{classifier: intent.NewClassifier(intent.NewScorer(e.config.LearnedHistory))}
}

// Pending returns the action the session is waiting on, or nil when idle.
func (s *Session) Pending() PendingAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Reset returns the session to idle and forgets learned patterns.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.armedAt = time.Time{}
	s.classifier.Scorer().Reset()
}

// TurnInput is everything a turn needs from the caller.
type TurnInput struct {
	Context            *ConversationContext
	Message            string
	Accounts           []model.Account
	RecentTransactions []model.Transaction
	FixedBills         []model.FixedBill
}

// turn is the per-message working state shared by processors.
type turn struct {
	now        time.Time
	ctx        *ConversationContext
	classifier *intent.Classifier
	result     *intent.Result
	message    string
	accounts   []model.Account
	recent     []model.Transaction
	bills      []model.FixedBill
}

func (t *turn) classify() intent.Result {
	if t.result == nil {
		res := t.classifier.Classify(intent.NewInput(t.message, t.accounts, t.bills, t.now))
		slog.Debug("Classified message",
			"intent", res.Winner.Kind,
			"confidence", res.Winner.Confidence,
			"candidates", len(res.Candidates),
			"fallback", res.Fallback)
		t.result = &res
	}
	return *t.result
}

func (t *turn) learn(res intent.Result) {
	t.classifier.Learn(t.message, res)
}

// with returns a copy of t for a different message.
func (t *turn) with(message string) *turn {
	sub := *t
	sub.message = message
	sub.result = nil
	return &sub
}

func (t *turn) accountNames() []string {
	return extract.AccountNames(t.accounts)
}

// ProcessTurn handles one chat message. It never fails: every problem becomes
// a result with StatusError. The session's pending action and the caller's
// context are updated to match the result.
func (e *Engine) ProcessTurn(ctx context.Context, sess *Session, in TurnInput) ActionResult {
	if ctx.Err() != nil {
		return failure(intent.Unknown, msgInternalError)
	}
	if sess == nil || in.Context == nil || !validAccounts(in.Accounts) {
		slog.Error("Rejected malformed turn input", "has_session", sess != nil, "has_context", in.Context != nil)
		return failure(intent.Unknown, msgInternalError)
	}
	if strings.TrimSpace(in.Message) == "" {
		return failure(intent.Unknown, msgEmptyMessage)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	t := &turn{
		now:        e.clock(),
		ctx:        in.Context,
		classifier: sess.classifier,
		message:    strings.TrimSpace(in.Message),
		accounts:   in.Accounts,
		recent:     in.RecentTransactions,
		bills:      in.FixedBills,
	}
	slog.Debug("Processing turn", "message", t.message, "pending", sess.pending != nil)

	if sess.pending != nil && e.config.PendingTTL > 0 && t.now.Sub(sess.armedAt) > e.config.PendingTTL {
		slog.Debug("Pending action expired", "kind", sess.pending.Kind(), "armed_at", sess.armedAt)
		sess.pending = nil
		in.Context.PendingQuestion = ""
	}

	var res ActionResult
	if sess.pending != nil {
		res = e.continuePending(t, sess.pending)
	} else {
		res = e.fresh(t)
	}
	return e.settle(sess, t, res)
}

// ProcessClarificationResponse interprets answer as the reply to pending
// without touching the session's own pending action.
func (e *Engine) ProcessClarificationResponse(ctx context.Context, sess *Session, answer string, pending PendingAction,
	accounts []model.Account, bills []model.FixedBill) ActionResult {
	if ctx.Err() != nil || sess == nil || pending == nil || !validAccounts(accounts) {
		return failure(intent.Unknown, msgInternalError)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	t := &turn{
		now:        e.clock(),
		ctx:        &ConversationContext{},
		classifier: sess.classifier,
		message:    strings.TrimSpace(answer),
		accounts:   accounts,
		bills:      bills,
	}
	res, _ := e.resume(t, pending)
	return res
}

func (e *Engine) continuePending(t *turn, p PendingAction) ActionResult {
	if intent.IsCancellation(t.message) {
		slog.Debug("Pending action cleared", "kind", p.Kind())
		return success(intent.Unknown, msgCancelled, nil)
	}

	if freeText(p) && e.displacesFreeText(t) {
		if res, ok := e.abandon(t, p); ok {
			return res
		}
	}
	res, fit := e.resume(t, p)
	if fit {
		slog.Debug("Pending action resumed", "kind", p.Kind(), "status", res.Status)
		return res
	}
	if abandoned, ok := e.abandon(t, p); ok {
		return abandoned
	}
	return res
}

// abandon drops p in favour of a confidently recognised new intent.
func (e *Engine) abandon(t *turn, p PendingAction) (ActionResult, bool) {
	res := t.classify()
	w := res.Winner
	if !res.Matched() || res.Fallback || w.Confidence < e.config.AbandonConfidence {
		return ActionResult{}, false
	}
	slog.Debug("Pending action abandoned", "kind", p.Kind(), "intent", w.Kind, "confidence", w.Confidence)
	return e.dispatch(t, res), true
}

// displacesFreeText reports whether a message sent while a free-text answer
// is expected is a new request rather than the answer. A single keyword is
// not enough: "salário" is a fine description.
func (e *Engine) displacesFreeText(t *turn) bool {
	res := t.classify()
	w := res.Winner
	if !res.Matched() || res.Fallback || w.Confidence < e.config.AbandonConfidence {
		return false
	}
	if w.Slots.HasAmount || w.Slots.Period != nil {
		return true
	}
	if extract.MentionedAccount(t.message, t.accounts).Status != extract.MatchNotFound {
		return true
	}
	if w.Kind.IsQuery() || w.Kind == intent.GetBalance || w.Kind == intent.Help {
		return true
	}
	return w.Confidence > e.config.AbandonConfidence && w.Hits >= 2
}

func (e *Engine) fresh(t *turn) ActionResult {
	if t.ctx.LastIntent.IsQuery() {
		if p, ok := extract.BarePeriod(t.message, t.now); ok {
			return e.query(t, t.ctx.LastIntent, p)
		}
	}

	if intent.IsCorrection(t.message) {
		return e.processCorrection(t)
	}

	if _, rest, ok := intent.SplitGreeting(t.message); ok && rest != "" {
		sub := t.with(rest)
		if res := sub.classify(); res.Matched() && res.Winner.Kind != intent.Greeting {
			return e.dispatch(sub, res)
		}
	}

	res := t.classify()
	if !res.Matched() {
		t.learn(res)
		out := failure(intent.Unknown, unknownMessage())
		out.Suggestions = res.Suggestions
		return out
	}
	return e.dispatch(t, res)
}

func (e *Engine) dispatch(t *turn, res intent.Result) ActionResult {
	t.learn(res)
	w := res.Winner
	var out ActionResult
	switch w.Kind {
	case intent.Greeting:
		out = e.greeting(t)
	case intent.Help:
		out = success(intent.Help, helpMessage(), nil)
	case intent.Correction:
		out = e.processCorrection(t)
	case intent.CreateFixedBill:
		out = e.processCreateFixedBill(t, w.Slots)
	case intent.ListFixedBills:
		out = e.listFixedBills(t)
	case intent.PayFixedBill:
		out = e.processPayFixedBill(t, w.Slots)
	case intent.PixQuery, intent.PeriodQuery, intent.ExpenseQuery, intent.IncomeQuery, intent.GetSummary:
		period := extract.ThisMonth(t.now)
		if w.Slots.Period != nil {
			period = *w.Slots.Period
		}
		out = e.query(t, w.Kind, period)
	case intent.GetBalance:
		out = e.balance(t)
	case intent.CreateAccount:
		out = e.processCreateAccount(t)
	case intent.Transfer:
		out = e.processTransfer(t)
	case intent.AddExpense:
		out = e.processTransaction(t, model.TypeExpense)
	case intent.AddIncome:
		out = e.processTransaction(t, model.TypeIncome)
	default:
		out = failure(intent.Unknown, unknownMessage())
	}
	out.Suggestions = append(out.Suggestions, res.Suggestions...)
	return out
}

// settle arms or clears the session's pending action to match res.
func (e *Engine) settle(sess *Session, t *turn, res ActionResult) ActionResult {
	switch res.Status {
	case StatusClarification, StatusConfirmation:
		if res.Pending == nil {
			slog.Error("Question without pending action", "intent", res.Intent, "status", res.Status)
			res = failure(res.Intent, msgInternalError)
			break
		}
		slog.Debug("Pending action armed", "kind", res.Pending.Kind())
		sess.pending = res.Pending
		sess.armedAt = t.now
		t.ctx.PendingQuestion = res.Response
		return res
	}

	sess.pending = nil
	sess.armedAt = time.Time{}
	t.ctx.PendingQuestion = ""
	if res.Status == StatusSuccess && res.Intent != "" && !res.Intent.IsReadOnly() {
		t.ctx.LastIntent = res.Intent
	}
	return res
}

func validAccounts(accounts []model.Account) bool {
	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if a.ID == "" || seen[a.ID] {
			return false
		}
		seen[a.ID] = true
	}
	return true
}

func (e *Engine) greeting(t *turn) ActionResult {
	salutation := "Boa noite"
	switch h := t.now.Hour(); {
	case h < 12:
		salutation = "Bom dia"
	case h < 18:
		salutation = "Boa tarde"
	}
	text := salutation + "! Sou a Dinah, sua assistente financeira. Como posso ajudar?"
	res := success(intent.Greeting, text, nil)
	if len(t.accounts) == 0 {
		res.Suggestions = []string{`Crie sua primeira conta: "criar conta Nubank"`}
	}
	return res
}
