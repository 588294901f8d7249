package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/normalize"
)

// Alerts from every supported bank are SGD card or account debits.
const (
	alertCurrency = "SGD"
	alertType     = model.TxnDebit
)

// Rule detects one bank's alerts and extracts transactions from them.
type Rule struct {
	Bank     model.Bank
	Markers  []string       // any marker present in the normalized text selects this rule
	Amount   *regexp.Regexp // first capture group is the amount
	Merchant *regexp.Regexp // first capture group is the merchant
}

// Compile builds a Rule from pattern strings.
func Compile(bank model.Bank, markers []string, amount, merchant string) (Rule, error) {
	if len(markers) == 0 {
		return Rule{}, fmt.Errorf("rule %s: no markers", bank)
	}
	amountRe, err := compileCapture(amount)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: amount pattern: %w", bank, err)
	}
	merchantRe, err := compileCapture(merchant)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: merchant pattern: %w", bank, err)
	}
	return Rule{
		Bank:     bank,
		Markers:  markers,
		Amount:   amountRe,
		Merchant: merchantRe,
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(bank model.Bank, markers []string, amount, merchant string) Rule {
	r, err := Compile(bank, markers, amount, merchant)
	if err != nil {
		panic(err)
	}
	return r
}

func compileCapture(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("%q has no capture group", pattern)
	}
	return re, nil
}

// Detects reports whether text carries one of the rule's bank markers.
func (r Rule) Detects(text string) bool {
	for _, m := range r.Markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Extract applies the amount and merchant patterns to normalized text.
// It returns nil when the amount pattern does not match.
func (r Rule) Extract(text string, date time.Time) *model.ParsedTransaction {
	amountStr, merchant, ok := r.match(text)
	if !ok {
		return nil
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil
	}

	if merchant == "" {
		merchant = model.UnknownMerchant
	}

	return &model.ParsedTransaction{
		Amount:   amount,
		Merchant: merchant,
		Date:     date,
		Bank:     r.Bank,
		Type:     alertType,
		Currency: alertCurrency,
	}
}

// match returns the raw amount capture and the trimmed merchant capture.
func (r Rule) match(text string) (amount, merchant string, ok bool) {
	am := r.Amount.FindStringSubmatch(text)
	if am == nil {
		return "", "", false
	}
	if mm := r.Merchant.FindStringSubmatch(text); mm != nil {
		merchant = normalize.TrimSpace(mm[1])
	}
	return am[1], merchant, true
}
