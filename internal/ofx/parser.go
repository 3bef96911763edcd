// Package ofx reads bank and credit card statements in OFX/QFX format and
// books their entries into a Dinah account.
package ofx

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/dinah/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix    = regexp.MustCompile(`^\d{2}/\d{2}(/\d{2,4})?\s+`)
)

// Statement prefixes that carry no information about the merchant.
var noisePrefixes = []string{
	"COMPRA CARTAO DEBITO ",
	"COMPRA CARTAO ",
	"COMPRA NO DEBITO ",
	"COMPRA ",
	"PAGAMENTO DE BOLETO ",
	"PAGTO ",
	"DEBITO AUTOMATICO ",
	"POS PURCHASE ",
	"DEBIT CARD PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
}

// Entry is one statement line, ready to be booked.
type Entry struct {
	Timestamp time.Time
	FitID     string
	// StatementAccount is the bank's account number, not a Dinah account.
	StatementAccount string
	Description      string
	Type             model.TransactionType
	Amount           float64
}

// Hash identifies the entry once booked into accountID, so importing the same
// statement twice books nothing new. Banks give every line a FITID unique per
// account; lines without one fall back to their content.
func (e Entry) Hash(accountID string) string {
	if e.FitID == "" {
		txn := model.Transaction{
			Timestamp:   e.Timestamp,
			Type:        e.Type,
			Amount:      e.Amount,
			Description: e.Description,
			AccountID:   accountID,
		}
		return txn.GenerateHash()
	}
	sum := sha256.Sum256([]byte("ofx:" + accountID + ":" + e.StatementAccount + ":" + e.FitID))
	return fmt.Sprintf("%x", sum)
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes formatting issues common in bank exports.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	// SGML exports sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its entries oldest first.
// Zero-amount lines are dropped.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	slog.Info("Parsed OFX file",
		"total_entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, statementAccount string) []Entry {
	if list == nil {
		return nil
	}
	entries := make([]Entry, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		entry, ok := p.convertTransaction(ofxTx, statementAccount)
		if !ok {
			slog.Debug("Skipping zero-amount OFX entry", "fitid", ofxTx.FiTID)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// convertTransaction maps credits to income and debits to expenses.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, statementAccount string) (Entry, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	amount = model.RoundCents(amount)
	if amount == 0 {
		return Entry{}, false
	}

	entry := Entry{
		Timestamp:        ofxTx.DtPosted.Time,
		FitID:            string(ofxTx.FiTID),
		StatementAccount: statementAccount,
		Description:      p.extractMerchantName(ofxTx),
		Type:             model.TypeIncome,
		Amount:           amount,
	}
	if amount < 0 {
		entry.Type = model.TypeExpense
		entry.Amount = -amount
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("%s importada", entry.Type.Label())
	}
	return entry, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(datePrefix.ReplaceAllString(name, ""))
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBITO", "CREDITO", "COMPRA", "PAGAMENTO", "TRANSFERENCIA", "DEBIT", "CREDIT", "PAYMENT":
		return true
	}
	return false
}

// GetAccounts lists the statement account numbers in the file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
