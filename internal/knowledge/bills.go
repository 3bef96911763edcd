package knowledge

// BillCategory groups recurring bills for due-day suggestions and summaries.
type BillCategory string

// Bill categories.
const (
	BillHousing       BillCategory = "moradia"
	BillUtility       BillCategory = "utilidades"
	BillSubscription  BillCategory = "assinatura"
	BillCommunication BillCategory = "comunicacao"
	BillEducation     BillCategory = "educacao"
	BillHealth        BillCategory = "saude"
	BillTaxes         BillCategory = "impostos"
	BillOther         BillCategory = "outros"
)

// BillSynonym is a canonical bill name with the words people use for it.
type BillSynonym struct {
	Canonical string
	Category  BillCategory
	Synonyms  []string
}

// BillSynonyms lists the recurring bills Dinah knows about. Synonyms are normalized.
var BillSynonyms = []BillSynonym{
	{Canonical: "Aluguel", Category: BillHousing, Synonyms: []string{"aluguel", "aluguer", "locacao"}},
	{Canonical: "Condomínio", Category: BillHousing, Synonyms: []string{"condominio", "condo"}},
	{Canonical: "Financiamento", Category: BillHousing, Synonyms: []string{"financiamento", "prestacao da casa", "parcela da casa"}},
	{Canonical: "Luz", Category: BillUtility, Synonyms: []string{"luz", "energia", "eletricidade", "conta de luz", "enel", "cemig", "copel"}},
	{Canonical: "Água", Category: BillUtility, Synonyms: []string{"agua", "conta de agua", "sabesp", "saneamento", "copasa"}},
	{Canonical: "Gás", Category: BillUtility, Synonyms: []string{"gas", "comgas", "botijao"}},
	{Canonical: "Internet", Category: BillCommunication, Synonyms: []string{"internet", "wifi", "wi fi", "banda larga", "fibra"}},
	{Canonical: "Celular", Category: BillCommunication, Synonyms: []string{"celular", "telefone", "plano de celular"}},
	{Canonical: "Netflix", Category: BillSubscription, Synonyms: []string{"netflix"}},
	{Canonical: "Spotify", Category: BillSubscription, Synonyms: []string{"spotify"}},
	{Canonical: "Streaming", Category: BillSubscription, Synonyms: []string{"streaming", "disney", "hbo", "prime video", "globoplay"}},
	{Canonical: "Academia", Category: BillSubscription, Synonyms: []string{"academia", "smartfit", "smart fit", "gympass", "wellhub"}},
	{Canonical: "Escola", Category: BillEducation, Synonyms: []string{"escola", "mensalidade escolar", "colegio"}},
	{Canonical: "Faculdade", Category: BillEducation, Synonyms: []string{"faculdade", "universidade", "mensalidade da faculdade"}},
	{Canonical: "Plano de saúde", Category: BillHealth, Synonyms: []string{"plano de saude", "convenio", "unimed", "amil"}},
	{Canonical: "Seguro", Category: BillOther, Synonyms: []string{"seguro", "seguro do carro", "seguro de vida"}},
	{Canonical: "IPTU", Category: BillTaxes, Synonyms: []string{"iptu"}},
	{Canonical: "IPVA", Category: BillTaxes, Synonyms: []string{"ipva"}},
}

// CommonBills are bill names accepted even without a synonym entry.
var CommonBills = []string{
	"cartao de credito", "fatura", "boleto", "mensalidade", "parcela", "diarista", "baba", "pensao", "consorcio",
}

// DefaultDueDay suggests a due day for a bill category, or 0 when there is no
// usual day for it.
func DefaultDueDay(category BillCategory) int {
	switch category {
	case BillHousing:
		return 10
	case BillUtility:
		return 15
	case BillSubscription, BillCommunication:
		return 20
	case BillEducation, BillHealth, BillTaxes, BillOther:
		return 0
	}
	return 0
}
