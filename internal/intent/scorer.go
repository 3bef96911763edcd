package intent

import (
	"sync"

	"github.com/Veraticus/dinah/internal/fuzzy"
)

const (
	baseConfidence     = 0.5
	keywordBonus       = 0.2
	learnedBonus       = 0.1
	successConfidence  = 0.7
	minLearnedWordLen  = 3
	defaultHistorySize = 500
)

// kindKeywords are the words whose literal presence raises confidence in a kind.
var kindKeywords = map[Kind][]string{
	Greeting:        greetingPhrases,
	Help:            append(append([]string{}, helpWords...), helpPhrases...),
	Correction:      append(append([]string{}, correctionWords...), "errado", "corrigir"),
	CreateFixedBill: append(append([]string{}, fixedPhrases...), "cadastrar", "criar", "todo mes", "mensalmente"),
	ListFixedBills:  append(append([]string{}, billListPhrases...), "contas fixas", "listar", "quais"),
	PayFixedBill:    payWords,
	PixQuery:        []string{"pix", "quanto", "quantos", "recebi", "mandei", "enviei"},
	PeriodQuery:     []string{"quanto gastei", "quanto recebi", "quanto ganhei", "ontem", "hoje", "semana", "mes passado"},
	ExpenseQuery:    []string{"quanto gastei", "gastos", "despesas", "gastei"},
	IncomeQuery:     []string{"quanto recebi", "quanto ganhei", "receitas", "ganhos", "recebi"},
	GetSummary:      append(append([]string{}, summaryWords...), summaryPhrases...),
	GetBalance:      append(append([]string{}, balanceWords...), balancePhrases...),
	CreateAccount:   []string{"criar conta", "nova conta", "abrir conta", "conta", "carteira", "criar", "cadastrar"},
	Transfer:        []string{"transferi", "transferir", "transferencia", "mandei", "enviei", "passei", "para", "pra"},
	AddExpense:      expenseWords,
	AddIncome:       append(append([]string{}, incomeWords...), incomePhrases...),
}

type learnedPattern struct {
	count   int
	success int
}

// Scorer assigns confidences and keeps a bounded history of words seen in
// past messages with how often they led to a confident classification. Each
// session owns its own Scorer so learned bias never leaks between users.
type Scorer struct {
	patterns map[string]*learnedPattern
	order    []string
	limit    int
	mu       sync.Mutex
}

// NewScorer creates a scorer remembering at most limit words. A limit of zero
// or less uses the default of 500.
func NewScorer(limit int) *Scorer {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return &Scorer{patterns: map[string]*learnedPattern{}, limit: limit}
}

// Confidence scores text for kind: 0.5, plus 0.2 for each kind keyword
// present, plus up to 0.1 from the learned success rate of its words,
// clamped to 1.
func (s *Scorer) Confidence(text string, kind Kind) float64 {
	confidence := baseConfidence + keywordBonus*float64(countPresent(text, kindKeywords[kind]))

	s.mu.Lock()
	rate, seen := 0.0, 0
	for _, w := range learnableWords(text) {
		if p, ok := s.patterns[w]; ok && p.count > 0 {
			rate += float64(p.success) / float64(p.count)
			seen++
		}
	}
	s.mu.Unlock()

	if seen > 0 {
		confidence += learnedBonus * rate / float64(seen)
	}
	return min(confidence, 1)
}

// Learn records the words of text; they count as a success when the turn's
// winning confidence exceeded 0.7. The oldest words are forgotten first.
func (s *Scorer) Learn(text string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range learnableWords(text) {
		p, ok := s.patterns[w]
		if !ok {
			p = &learnedPattern{}
			s.patterns[w] = p
			s.order = append(s.order, w)
		}
		p.count++
		if confidence > successConfidence {
			p.success++
		}
	}
	for len(s.order) > s.limit {
		delete(s.patterns, s.order[0])
		s.order = s.order[1:]
	}
}

// Seen returns how many learned messages contained word.
func (s *Scorer) Seen(word string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.patterns[fuzzy.Normalize(word)]; ok {
		return p.count
	}
	return 0
}

// Len returns how many words the scorer currently remembers.
func (s *Scorer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Reset forgets everything learned.
func (s *Scorer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = map[string]*learnedPattern{}
	s.order = nil
}

func learnableWords(text string) []string {
	seen := map[string]bool{}
	var words []string
	for _, w := range fuzzy.Words(fuzzy.Normalize(text)) {
		if len(w) < minLearnedWordLen || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
