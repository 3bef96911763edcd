package intent

import (
	"time"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/model"
)

const (
	fallbackConfidence   = 0.3
	suggestionConfidence = 0.6
)

// Slots are the entities extracted once per message and shared by detectors
// and candidates.
type Slots struct {
	Period    *extract.Period
	Bill      *extract.BillMatch
	Amount    float64
	HasAmount bool
}

// Input is a message prepared for classification.
type Input struct {
	Now        time.Time
	Raw        string
	Text       string
	Words      []string
	Accounts   []model.Account
	FixedBills []model.FixedBill
	Slots      Slots
}

// NewInput normalizes message and extracts the slots detectors rely on.
func NewInput(message string, accounts []model.Account, bills []model.FixedBill, now time.Time) *Input {
	text := fuzzy.Normalize(message)
	in := &Input{
		Now:        now,
		Raw:        message,
		Text:       text,
		Words:      fuzzy.Words(text),
		Accounts:   accounts,
		FixedBills: bills,
	}
	in.Slots.Amount, in.Slots.HasAmount = extract.MonetaryValue(message)
	if p, ok := extract.FindPeriod(message, now); ok {
		in.Slots.Period = &p
	}
	if b, ok := extract.FixedBill(message, bills); ok {
		in.Slots.Bill = &b
	}
	return in
}

// Candidate is one intent that fired for a message. Hits counts the kind's
// keywords present in the message.
type Candidate struct {
	Kind       Kind
	Slots      Slots
	Confidence float64
	Hits       int
}

// Result is the outcome of classifying a message. Kind is Unknown when
// nothing fired and no fallback applied.
type Result struct {
	Candidates  []Candidate
	Suggestions []string
	Winner      Candidate
	Fallback    bool
}

// Matched reports whether the message was understood at all.
func (r Result) Matched() bool {
	return r.Winner.Kind != Unknown
}

// Classifier runs detectors, the precedence policy, scoring and arbitration.
// It holds a session's learned patterns and must not be shared across users.
type Classifier struct {
	scorer *Scorer
}

// NewClassifier creates a classifier with its own scorer.
func NewClassifier(scorer *Scorer) *Classifier {
	if scorer == nil {
		scorer = NewScorer(0)
	}
	return &Classifier{scorer: scorer}
}

// Scorer returns the classifier's scorer.
func (c *Classifier) Scorer() *Scorer {
	return c.scorer
}

// Learn feeds the scorer with the message behind a classification the caller
// acted on. Call it once per turn.
func (c *Classifier) Learn(message string, res Result) {
	c.scorer.Learn(message, res.Winner.Confidence)
}

// Classify picks the intent of in. It does not learn from in; see Learn.
func (c *Classifier) Classify(in *Input) Result {
	var fired []Kind
	for _, d := range detectors {
		if d.detect(in) {
			fired = append(fired, d.kind)
		}
	}
	fired = applyPolicy(fired)

	var res Result
	if len(fired) == 0 {
		kind, ok := fallback(in)
		if !ok {
			res.Winner = Candidate{Kind: Unknown, Slots: in.Slots}
			return res
		}
		res.Fallback = true
		res.Candidates = []Candidate{{Kind: kind, Slots: in.Slots, Confidence: fallbackConfidence}}
	} else {
		res.Candidates = make([]Candidate, len(fired))
		for i, k := range fired {
			res.Candidates[i] = Candidate{
				Kind:       k,
				Slots:      in.Slots,
				Confidence: c.scorer.Confidence(in.Text, k),
				Hits:       countPresent(in.Text, kindKeywords[k]),
			}
		}
	}

	res.Winner = Arbitrate(res.Candidates)

	if res.Winner.Confidence < suggestionConfidence && len(in.Accounts) == 0 {
		res.Suggestions = append(res.Suggestions, `Crie sua primeira conta: "criar conta Nubank"`)
	}
	return res
}

// Arbitrate returns the candidate with the highest confidence. The first of
// equally confident candidates wins. An empty list yields Unknown.
func Arbitrate(candidates []Candidate) Candidate {
	if len(candidates) == 0 {
		return Candidate{Kind: Unknown}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}
