package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bank identifies the issuer of a transaction notification.
type Bank string

const (
	BankDBS     Bank = "DBS"
	BankUOB     Bank = "UOB"
	BankCiti    Bank = "Citi"
	BankUnknown Bank = "Unknown"
)

var knownBanks = []Bank{BankDBS, BankUOB, BankCiti, BankUnknown}

// ParseBank resolves a bank name case-insensitively.
func ParseBank(s string) (Bank, error) {
	name := strings.TrimSpace(s)
	for _, b := range knownBanks {
		if strings.EqualFold(string(b), name) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bank %q", s)
}

// TxnType is the direction of money movement.
type TxnType string

const (
	TxnDebit  TxnType = "debit"
	TxnCredit TxnType = "credit"
)

// ParseTxnType resolves "debit" or "credit".
func ParseTxnType(s string) (TxnType, error) {
	switch TxnType(strings.ToLower(strings.TrimSpace(s))) {
	case TxnDebit:
		return TxnDebit, nil
	case TxnCredit:
		return TxnCredit, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// UnknownMerchant is used when an alert carries an amount but no recognizable merchant.
const UnknownMerchant = "Unknown Merchant"

// ParsedTransaction is a transaction extracted from a bank notification email.
type ParsedTransaction struct {
	Amount   decimal.Decimal `json:"amount"`
	Merchant string          `json:"merchant"`
	Date     time.Time       `json:"date"` // receipt time of the email, never read from the body
	Bank     Bank            `json:"bank"`
	Type     TxnType         `json:"type"`
	Currency string          `json:"currency"`
}

// String renders the transaction on one line, e.g. "DBS debit SGD 15.00 SHOPEE".
func (t ParsedTransaction) String() string {
	return fmt.Sprintf("%s %s %s %s %s", t.Bank, t.Type, t.Currency, t.Amount.StringFixed(2), t.Merchant)
}
