package extract

import (
	"strings"

	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
)

// BillSource says where a bill match came from.
type BillSource string

// Bill sources, in priority order.
const (
	BillRegistered BillSource = "registered"
	BillSynonym    BillSource = "synonym"
	BillCommon     BillSource = "common"
)

// BillMatch is a recurring bill named in a message. Bill is set only when the
// match is one of the user's registered bills.
type BillMatch struct {
	Bill     *model.FixedBill
	Name     string
	Category knowledge.BillCategory
	Source   BillSource
}

// genericBillWords are too common in bill names to identify one.
var genericBillWords = wordSet("conta", "de", "do", "da", "fatura", "mensal", "mensalidade", "plano", "boleto", "pagamento")

// FixedBill finds the bill a message refers to. The user's registered bills
// are checked first (exact name, then a distinctive name word), then the
// synonym table, which maps back to a registered bill when one fits, then a
// short list of common bill names.
func FixedBill(message string, bills []model.FixedBill) (BillMatch, bool) {
	text := fuzzy.Normalize(message)
	active := model.ActiveBills(bills)

	for i := range active {
		name := fuzzy.Normalize(active[i].Name)
		if name != "" && (text == name || fuzzy.ContainsWord(text, name)) {
			return registeredMatch(&active[i]), true
		}
	}
	for i := range active {
		for _, w := range fuzzy.Words(fuzzy.Normalize(active[i].Name)) {
			if len(w) > 2 && !genericBillWords[w] && fuzzy.ContainsWord(text, w) {
				return registeredMatch(&active[i]), true
			}
		}
	}

	for _, syn := range knowledge.BillSynonyms {
		if !synonymIn(text, syn) {
			continue
		}
		for i := range active {
			if synonymIn(fuzzy.Normalize(active[i].Name), syn) {
				return registeredMatch(&active[i]), true
			}
		}
		return BillMatch{Name: syn.Canonical, Category: syn.Category, Source: BillSynonym}, true
	}

	for _, common := range knowledge.CommonBills {
		if fuzzy.ContainsWord(text, common) {
			return BillMatch{Name: titleCase(common), Category: knowledge.BillOther, Source: BillCommon}, true
		}
	}
	return BillMatch{}, false
}

func synonymIn(text string, syn knowledge.BillSynonym) bool {
	if fuzzy.ContainsWord(text, fuzzy.Normalize(syn.Canonical)) {
		return true
	}
	for _, s := range syn.Synonyms {
		if fuzzy.ContainsWord(text, s) {
			return true
		}
	}
	return false
}

func registeredMatch(bill *model.FixedBill) BillMatch {
	return BillMatch{
		Bill:     bill,
		Name:     bill.Name,
		Category: BillCategoryOf(bill.Category),
		Source:   BillRegistered,
	}
}

// BillCategoryOf maps a stored category string to a known category.
func BillCategoryOf(category string) knowledge.BillCategory {
	c := knowledge.BillCategory(strings.ToLower(fuzzy.Normalize(category)))
	switch c {
	case knowledge.BillHousing, knowledge.BillUtility, knowledge.BillSubscription, knowledge.BillCommunication,
		knowledge.BillEducation, knowledge.BillHealth, knowledge.BillTaxes, knowledge.BillOther:
		return c
	}
	return knowledge.BillOther
}

var billNameNoise = wordSet("cadastrar", "cadastra", "cadastre", "criar", "cria", "crie", "adicionar", "adiciona",
	"registrar", "nova", "novo", "conta", "contas", "fixa", "fixas", "recorrente", "mensal", "mensalidade", "todo",
	"mes", "vence", "vencimento", "de", "do", "da", "minha", "meu", "uma", "um", "a", "o")

// BillName finds a bill name for a new fixed bill: a synonym's canonical name,
// a common bill name, or failing those the cleaned free text.
func BillName(message string) (string, knowledge.BillCategory) {
	if m, ok := FixedBill(message, nil); ok {
		return m.Name, m.Category
	}
	kept := make([]token, 0, 4)
	for _, t := range clean(tokenize(message)) {
		if !billNameNoise[t.norm] {
			kept = append(kept, t)
		}
	}
	name := joinTokens(clean(kept))
	if name == "" {
		return "", knowledge.BillOther
	}
	return titleCase(name), knowledge.BillOther
}
