package intent

import (
	"strings"

	"github.com/Veraticus/dinah/internal/fuzzy"
)

// Keyword lists are normalized: lowercase, no accents.
var (
	greetingPhrases = []string{"bom dia", "boa tarde", "boa noite", "e ai", "eai", "ola", "oi", "oie", "oii",
		"opa", "salve", "hey", "hello", "hi", "fala", "tudo bem", "tudo bom"}

	helpWords   = []string{"ajuda", "help", "socorro", "comandos", "menu", "ajudar"}
	helpPhrases = []string{"como funciona", "o que voce faz", "o que voce pode fazer", "como usar", "me ajuda",
		"o que posso fazer", "quais comandos", "como eu uso"}

	correctionWords   = []string{"corrigir", "corrige", "corrija", "correcao", "errei", "desfazer", "desfaz"}
	correctionPhrases = []string{"ta errado", "esta errado", "foi errado", "lancei errado", "registrei errado",
		"anotei errado", "editar ultima", "editar o ultimo", "editar ultimo", "alterar ultima", "alterar o ultimo",
		"mudar ultima", "mudar o ultimo", "apagar ultima", "apaga a ultima", "apagar o ultimo", "apaga o ultimo",
		"excluir ultima", "exclui a ultima", "excluir o ultimo", "cancelar ultima", "cancela a ultima",
		"cancelar o ultimo", "cancela o ultimo", "na verdade foi", "na verdade era", "valor errado", "conta errada"}

	cancellationWords = []string{"cancela", "cancelar", "cancele", "cancelado", "cancelo", "esquece", "esqueca",
		"deixa", "desisto", "desistir", "aborta", "abortar", "sair", "stop", "cancel", "parar", "pare", "para",
		"nada", "nenhum", "nenhuma", "nao", "n", "depois"}
	cancellationPhrases = []string{"deixa pra la", "deixa para la", "deixa quieto", "esquece isso", "esquece isto",
		"nao quero mais", "nao quero", "mudei de ideia", "cancela isso", "cancelar isso", "pode cancelar",
		"quero cancelar", "nao precisa", "agora nao", "outra hora", "deixa isso", "nao importa", "para com isso"}

	affirmativeWords   = []string{"sim", "s", "yes", "y", "confirmo", "confirma", "confirmar", "confirmado", "pode", "ok", "okay", "isso", "claro", "certo", "correto", "beleza", "blz", "manda", "bora", "positivo", "exato", "perfeito", "fechado"}
	affirmativePhrases = []string{"pode sim", "sim pode", "pode confirmar", "isso mesmo", "ta certo", "esta certo", "pode ser", "com certeza", "manda ver"}

	expenseWords = []string{"gastei", "gasto", "gastos", "paguei", "comprei", "compra", "compras", "despesa",
		"torrei", "desembolsei", "custou", "saiu", "gastar", "pagar", "paga", "pago", "comprar", "debito"}
	expenseIndicators = []string{"pagar", "paguei", "pago", "conta", "boleto", "compra", "comprei", "fatura", "gastei"}

	incomeWords = []string{"recebi", "receber", "ganhei", "ganho", "salario", "receita", "renda", "entrou",
		"caiu", "recebimento", "rendimento", "rendeu", "freela", "freelance", "bonus", "reembolso", "vendi", "mesada"}
	incomePhrases = []string{"me pagaram", "me pagou", "me deu", "me deram", "me transferiu", "me mandou"}

	movementWords = []string{"transferi", "transferir", "transfere", "transfira", "transferencia", "transferiu",
		"mandei", "mandar", "manda", "enviei", "enviar", "envia", "passei", "passar", "passa", "movi", "mover",
		"movimentei", "pix", "depositei", "depositar", "guardei", "guardar"}

	balanceWords   = []string{"saldo", "saldos"}
	balancePhrases = []string{"quanto tenho", "quanto eu tenho", "quanto dinheiro", "meu dinheiro", "tenho na conta",
		"quanto sobrou", "quanto tem na", "quanto tem no", "dinheiro disponivel"}

	summaryWords   = []string{"resumo", "relatorio", "balanco", "extrato", "panorama", "analise"}
	summaryPhrases = []string{"como estou", "como estao minhas financas", "visao geral", "situacao financeira",
		"minhas financas", "como anda", "como foi o mes"}

	expenseQueryPhrases = []string{"quanto gastei", "quanto eu gastei", "meus gastos", "minhas despesas",
		"total de gastos", "quanto saiu", "com o que gastei", "onde gastei", "listar gastos", "mostrar gastos",
		"quais gastos", "gastos do", "gastos da", "gastos de", "despesas do", "despesas de", "quanto paguei",
		"gastei quanto", "o que gastei"}
	incomeQueryPhrases = []string{"quanto recebi", "quanto eu recebi", "quanto ganhei", "quanto eu ganhei",
		"minhas receitas", "quanto entrou", "meus ganhos", "receitas do", "receitas de", "recebi quanto",
		"o que recebi", "minha renda"}
	queryWords = []string{"quanto", "quantos", "quantas", "quais", "qual", "total", "listar", "lista", "mostrar",
		"mostra", "ver", "meus", "minhas", "historico", "relatorio"}

	createWords = []string{"criar", "crie", "cria", "nova", "novo", "abrir", "abri", "adicionar", "adiciona",
		"cadastrar", "cadastra", "cadastre", "registrar", "registra", "incluir", "inclui", "acrescentar"}
	accountNouns = []string{"conta", "carteira", "banco", "cartao", "poupanca", "caixinha"}

	fixedPhrases = []string{"conta fixa", "contas fixas", "despesa fixa", "despesas fixas", "gasto fixo",
		"gastos fixos", "conta mensal", "contas mensais", "conta recorrente", "contas recorrentes",
		"pagamento recorrente", "cobranca mensal", "boleto mensal"}
	recurrencePhrases = []string{"todo mes", "todos os meses", "mensalmente", "por mes", "ao mes", "todo dia"}
	listWords         = []string{"listar", "lista", "quais", "mostrar", "mostra", "ver", "minhas", "meus", "todas"}
	billListPhrases   = []string{"contas a pagar", "contas do mes", "o que vence", "vencimentos", "proximas contas",
		"contas pendentes", "contas em aberto", "o que falta pagar", "falta pagar"}
	payWords = []string{"paguei", "pagar", "pago", "paga", "quitei", "quitar", "pagamento", "quitado"}
)

// vocabulary holds every keyword of every detector. A message word that is
// itself a keyword only matches exactly, so "ganhei" is never read as a typo
// of "gastei".
var vocabulary = func() map[string]bool {
	v := map[string]bool{}
	for _, list := range [][]string{helpWords, correctionWords, cancellationWords, affirmativeWords, expenseWords,
		incomeWords, movementWords, balanceWords, summaryWords, queryWords, createWords, accountNouns, listWords, payWords} {
		for _, w := range list {
			v[w] = true
		}
	}
	return v
}()

// hasWord reports whether any message word matches a keyword, tolerating typos
// in words that are not keywords themselves.
func hasWord(words []string, keywords []string) bool {
	for _, w := range words {
		if vocabulary[w] {
			for _, k := range keywords {
				if w == k {
					return true
				}
			}
			continue
		}
		if fuzzy.MatchesAny(w, keywords, fuzzy.DetectorThreshold) {
			return true
		}
	}
	return false
}

// hasPhrase reports whether text contains any phrase on word boundaries.
func hasPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if fuzzy.ContainsWord(text, p) {
			return true
		}
	}
	return false
}

// countPresent counts keywords literally present in text.
func countPresent(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if fuzzy.ContainsWord(text, k) {
			n++
		}
	}
	return n
}

func trimmed(text string) string {
	return strings.Trim(strings.TrimSpace(text), "!?.,;")
}
