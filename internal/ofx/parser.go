// Package ofx turns bank OFX/QFX exports into draft ledger entries so a
// statement can be replayed into the remote ledger without retyping it.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/mhartley/tally/internal/model"
)

// Entry is one statement line, normalized into the shape the transaction
// composer expects: positive amount plus an explicit entry mode.
type Entry struct {
	FitID       string
	Date        string
	Description string
	CheckNumber string
	AccountRef  string
	Mode        model.EntryMode
	Amount      model.Amount
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files.
	// Pattern: <TAGNAME at end of line (no > and no content after tag)
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns its statement entries.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			stmtEntries, err := p.statementEntries(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
			if err != nil {
				slog.Warn("Failed to process bank statement",
					"account", stmt.BankAcctFrom.AcctID,
					"error", err)
				continue
			}
			entries = append(entries, stmtEntries...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			stmtEntries, err := p.statementEntries(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
			if err != nil {
				slog.Warn("Failed to process credit card statement",
					"account", stmt.CCAcctFrom.AcctID,
					"error", err)
				continue
			}
			entries = append(entries, stmtEntries...)
		}
	}

	slog.Info("Parsed OFX file",
		"total_entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

// Accounts extracts unique account IDs from the OFX file.
func (p *Parser) Accounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if stmt.BankAcctFrom.AcctID != "" {
				accountMap[string(stmt.BankAcctFrom.AcctID)] = true
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			if stmt.CCAcctFrom.AcctID != "" {
				accountMap[string(stmt.CCAcctFrom.AcctID)] = true
			}
		}
	}

	var accounts []string
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	return accounts, nil
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

func (p *Parser) statementEntries(list *ofxgo.TransactionList, accountRef string) ([]Entry, error) {
	if list == nil {
		return nil, nil
	}

	var entries []Entry
	for _, ofxTx := range list.Transactions {
		entry, err := p.convertTransaction(ofxTx, accountRef)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// convertTransaction maps one OFX transaction onto a draft entry. OFX signs
// amounts from the bank's perspective: debits are negative, credits positive.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountRef string) (Entry, error) {
	amount, err := ratToAmount(&ofxTx.TrnAmt.Rat)
	if err != nil {
		return Entry{}, fmt.Errorf("transaction %s: %w", ofxTx.FiTID, err)
	}

	mode := model.ModeExpense
	if amount > 0 {
		mode = model.ModeIncome
	}
	if amount < 0 {
		amount = -amount
	}

	return Entry{
		FitID:       string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time.Format(model.DateLayout),
		Description: p.extractDescription(ofxTx),
		CheckNumber: string(ofxTx.CheckNum),
		AccountRef:  accountRef,
		Mode:        mode,
		Amount:      amount,
	}, nil
}

// ratToAmount converts an OFX decimal to minor units, rounding half away
// from zero when the export carries sub-cent precision.
func ratToAmount(rat *big.Rat) (model.Amount, error) {
	if rat == nil {
		return 0, fmt.Errorf("missing amount")
	}

	scaled := new(big.Rat).Mul(rat, big.NewRat(100, 1))
	num := new(big.Int).Set(scaled.Num())
	den := scaled.Denom()

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		// Round half away from zero on the leftover fraction.
		doubled := new(big.Int).Mul(rem, big.NewInt(2))
		if doubled.CmpAbs(den) >= 0 {
			if num.Sign() < 0 {
				quo.Sub(quo, big.NewInt(1))
			} else {
				quo.Add(quo, big.NewInt(1))
			}
		}
	}
	if !quo.IsInt64() {
		return 0, fmt.Errorf("amount out of range")
	}
	return model.Amount(quo.Int64()), nil
}

// extractDescription tries to get a clean description from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	// Remove common processor prefixes
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

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
