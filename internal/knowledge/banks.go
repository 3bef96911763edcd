// Package knowledge holds the static lookup tables Dinah uses to recognise
// Brazilian banks, recurring bills and spending categories in free text.
package knowledge

// BankCategory groups banks by how they operate.
type BankCategory string

// Bank categories.
const (
	BankDigital     BankCategory = "digital"
	BankTraditional BankCategory = "traditional"
	BankPublic      BankCategory = "public"
)

// Bank is a canonical bank key with the spellings users type for it.
type Bank struct {
	Key      string
	Category BankCategory
	Aliases  []string
}

// Banks lists the known banks. Aliases are already normalized (lowercase, no accents).
var Banks = []Bank{
	{Key: "nubank", Category: BankDigital, Aliases: []string{"nubank", "nu bank", "roxinho", "nu"}},
	{Key: "inter", Category: BankDigital, Aliases: []string{"inter", "banco inter", "bancointer"}},
	{Key: "c6", Category: BankDigital, Aliases: []string{"c6", "c6 bank", "c6bank"}},
	{Key: "picpay", Category: BankDigital, Aliases: []string{"picpay", "pic pay"}},
	{Key: "mercadopago", Category: BankDigital, Aliases: []string{"mercado pago", "mercadopago", "mp"}},
	{Key: "pagbank", Category: BankDigital, Aliases: []string{"pagbank", "pagseguro", "pag seguro"}},
	{Key: "neon", Category: BankDigital, Aliases: []string{"neon"}},
	{Key: "next", Category: BankDigital, Aliases: []string{"banco next"}},
	{Key: "original", Category: BankDigital, Aliases: []string{"banco original"}},
	{Key: "itau", Category: BankTraditional, Aliases: []string{"itau", "itau unibanco"}},
	{Key: "bradesco", Category: BankTraditional, Aliases: []string{"bradesco", "brades"}},
	{Key: "santander", Category: BankTraditional, Aliases: []string{"santander"}},
	{Key: "btg", Category: BankTraditional, Aliases: []string{"btg", "btg pactual"}},
	{Key: "safra", Category: BankTraditional, Aliases: []string{"safra", "banco safra"}},
	{Key: "bb", Category: BankPublic, Aliases: []string{"banco do brasil", "bb", "bancodobrasil"}},
	{Key: "caixa", Category: BankPublic, Aliases: []string{"caixa", "caixa economica", "caixa economica federal", "cef"}},
	{Key: "carteira", Category: BankDigital, Aliases: []string{"carteira", "especie", "dinheiro vivo"}},
}

// Abbreviations maps short forms users type to a fragment of the account name
// they refer to.
var Abbreviations = map[string]string{
	"nu":    "nubank",
	"bb":    "banco do brasil",
	"cef":   "caixa",
	"itau":  "itau",
	"ita":   "itau",
	"brad":  "bradesco",
	"santa": "santander",
	"mp":    "mercado pago",
	"pic":   "picpay",
	"c6":    "c6",
}
