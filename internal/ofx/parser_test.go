package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/model"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>Info
</STATUS>
<DTSERVER>20260315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0260
<ACCTID>123456
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260301120000[0:GMT]
<DTEND>20260331120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260302120000[0:GMT]
<TRNAMT>3200.00
<FITID>202603020001
<NAME>SALARIO ACME LTDA
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260305120000[0:GMT]
<TRNAMT>-1500.00
<FITID>202603050001
<NAME>PAGAMENTO
<MEMO>ALUGUEL MARCO
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260303120000[0:GMT]
<TRNAMT>-45.90
<FITID>202603030001
<NAME>COMPRA CARTAO PADARIA REAL
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20260304120000[0:GMT]
<TRNAMT>0.00
<FITID>202603040001
<NAME>TARIFA ESTORNADA
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1654.10
<DTASOF>20260331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>BRL
<CCACCTFROM>
<ACCTID>5162000011112222
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20260301120000[0:GMT]
<DTEND>20260331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260310120000[0:GMT]
<TRNAMT>-39.90
<FITID>CC202603100001
<NAME>10/03 NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260312120000[0:GMT]
<TRNAMT>12.50
<FITID>CC202603120001
<NAME>ESTORNO IFOOD
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-27.40
<DTASOF>20260331120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "bank statement drops zero amounts",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "leading blank lines",
			ofxData:       "\n\n  " + sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.expectedCount)
		})
	}
}

func TestParseBankEntries(t *testing.T) {
	t.Parallel()

	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	salary := entries[0]
	assert.Equal(t, "202603020001", salary.FitID)
	assert.Equal(t, "123456", salary.StatementAccount)
	assert.Equal(t, model.TypeIncome, salary.Type)
	assert.Equal(t, "SALARIO ACME LTDA", salary.Description)
	assert.InDelta(t, 3200.00, salary.Amount, 0.001)
	assert.Equal(t, 2026, salary.Timestamp.Year())
	assert.Equal(t, time.March, salary.Timestamp.Month())
	assert.Equal(t, 2, salary.Timestamp.Day())

	bakery := entries[1]
	assert.Equal(t, model.TypeExpense, bakery.Type)
	assert.Equal(t, "PADARIA REAL", bakery.Description)
	assert.InDelta(t, 45.90, bakery.Amount, 0.001)

	rent := entries[2]
	assert.Equal(t, model.TypeExpense, rent.Type)
	assert.Equal(t, "ALUGUEL MARCO", rent.Description, "generic name falls back to memo")
	assert.InDelta(t, 1500.00, rent.Amount, 0.001)
}

func TestParseCreditCardEntries(t *testing.T) {
	t.Parallel()

	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "NETFLIX.COM", entries[0].Description)
	assert.Equal(t, model.TypeExpense, entries[0].Type)
	assert.InDelta(t, 39.90, entries[0].Amount, 0.001)
	assert.Equal(t, "5162000011112222", entries[0].StatementAccount)

	assert.Equal(t, "ESTORNO IFOOD", entries[1].Description)
	assert.Equal(t, model.TypeIncome, entries[1].Type)
}

func TestExtractMerchantName(t *testing.T) {
	t.Parallel()
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove card purchase prefix",
			tx:       ofxgo.Transaction{Name: "COMPRA CARTAO DEBITO MERCADO EXTRA"},
			expected: "MERCADO EXTRA",
		},
		{
			name:     "remove leading date",
			tx:       ofxgo.Transaction{Name: "15/03 UBER TRIP"},
			expected: "UBER TRIP",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  FARMACIA SAO JOAO  "},
			expected: "FARMACIA SAO JOAO",
		},
		{
			name:     "generic name uses memo",
			tx:       ofxgo.Transaction{Name: "DEBITO", Memo: "CONTA DE LUZ"},
			expected: "CONTA DE LUZ",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "PIX ENVIADO", Payee: &ofxgo.Payee{Name: "Maria Souza"}},
			expected: "Maria Souza",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, parser.extractMerchantName(tt.tx))
		})
	}
}

func TestEntryHash(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	base := Entry{Timestamp: day, FitID: "001", StatementAccount: "123456", Description: "PADARIA", Type: model.TypeExpense, Amount: 10}

	sameLine := base
	sameLine.Description = "PADARIA REAL"
	assert.Equal(t, base.Hash("acc-1"), sameLine.Hash("acc-1"), "FITID identifies the line")
	assert.NotEqual(t, base.Hash("acc-1"), base.Hash("acc-2"))

	otherLine := base
	otherLine.FitID = "002"
	assert.NotEqual(t, base.Hash("acc-1"), otherLine.Hash("acc-1"))

	noID := base
	noID.FitID = ""
	sameContent := noID
	assert.Equal(t, noID.Hash("acc-1"), sameContent.Hash("acc-1"))
	sameContent.Amount = 11
	assert.NotEqual(t, noID.Hash("acc-1"), sameContent.Hash("acc-1"))
}

func TestGetAccounts(t *testing.T) {
	t.Parallel()
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"5162000011112222"}, accounts)
}
