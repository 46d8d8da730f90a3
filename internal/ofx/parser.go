// Package ofx turns OFX/QFX bank statements into ledger transaction inputs.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/validation"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML-style files sometimes drop the closing bracket of a bare tag line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser converts statement lines into CreateTransactionInput values.
type Parser struct {
	category string
}

// NewParser creates a parser that files every line under category. An empty
// category means the default category.
func NewParser(category string) *Parser {
	if category == "" {
		category = model.DefaultCategoryName
	}
	return &Parser{category: category}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads a whole statement file. Lines with a zero amount carry no
// money movement and are skipped.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]model.CreateTransactionInput, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var inputs []model.CreateTransactionInput
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		inputs = append(inputs, p.convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		inputs = append(inputs, p.convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))...)
	}

	slog.Info("parsed OFX file",
		"transactions", len(inputs),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return inputs, nil
}

func (p *Parser) convertAll(lines []ofxgo.Transaction, accountID string) []model.CreateTransactionInput {
	inputs := make([]model.CreateTransactionInput, 0, len(lines))
	for _, line := range lines {
		input, ok := p.convert(line)
		if !ok {
			slog.Warn("skipping zero-amount statement line", "account", accountID, "fitid", string(line.FiTID))
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// convert maps one statement line. Debits are negative in OFX.
func (p *Parser) convert(line ofxgo.Transaction) (model.CreateTransactionInput, bool) {
	amount, _ := line.TrnAmt.Float64()
	if amount == 0 {
		return model.CreateTransactionInput{}, false
	}

	txType := model.TransactionTypeIncome
	if amount < 0 {
		txType = model.TransactionTypeExpense
		amount = -amount
	}

	name := extractName(line)
	if utf8.RuneCountInString(name) < validation.MinTransactionNameLength {
		name = line.TrnType.String()
	}

	input := model.CreateTransactionInput{
		Name:     truncate(name, validation.MaxTransactionNameLength),
		Amount:   amount,
		Type:     txType,
		Category: p.category,
		Date:     line.DtPosted.Format(model.DateLayout),
	}
	if line.FiTID != "" {
		input.Note = "FITID " + string(line.FiTID)
	}
	return input, true
}

// extractName tries to get a clean payee name from a statement line.
func extractName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && (strings.TrimSpace(name) == "" || isGenericDescription(name)) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " card posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxRunes]))
}
