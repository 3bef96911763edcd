package knowledge

// SpendingCategory is a bucket used when summarising expenses by description.
type SpendingCategory struct {
	Name     string
	Keywords []string
}

// SpendingCategories is checked in order; the first category with a matching
// keyword wins. Keywords are normalized.
var SpendingCategories = []SpendingCategory{
	{Name: "Alimentação", Keywords: []string{"mercado", "supermercado", "almoco", "jantar", "cafe", "lanche", "padaria", "ifood", "restaurante", "pizza", "acougue", "feira", "comida"}},
	{Name: "Transporte", Keywords: []string{"uber", "99", "taxi", "onibus", "metro", "gasolina", "combustivel", "posto", "estacionamento", "pedagio"}},
	{Name: "Moradia", Keywords: []string{"aluguel", "condominio", "luz", "agua", "gas", "energia", "internet", "iptu"}},
	{Name: "Saúde", Keywords: []string{"farmacia", "remedio", "medico", "consulta", "exame", "dentista", "plano de saude", "hospital"}},
	{Name: "Lazer", Keywords: []string{"cinema", "show", "bar", "cerveja", "viagem", "netflix", "spotify", "jogo", "festa"}},
	{Name: "Educação", Keywords: []string{"escola", "faculdade", "curso", "livro", "material"}},
	{Name: "Compras", Keywords: []string{"roupa", "sapato", "loja", "shopping", "amazon", "presente", "eletronico"}},
	{Name: "Contas fixas", Keywords: []string{"conta fixa"}},
}

// UncategorizedName labels expenses no category claims.
const UncategorizedName = "Outros"
