package parser

import (
	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/normalize"
)

// ws matches one space, including the NBSP and other Unicode spaces of decoded HTML.
const ws = `[` + normalize.SpaceClass + `]`

// Built-in patterns. Amounts need exactly two fractional digits; the trailing \b rejects a
// third digit.
const (
	DBSAmountPattern   = `(?i)Amount:` + ws + `*SGD` + ws + `?(\d+\.\d{2})\b`
	DBSMerchantPattern = `(?i)(?:To:` + ws + `+|at` + ws + `+)([A-Z0-9` + normalize.SpaceClass + `&]+?)(?:\n|\r|` + ws + `+SINGAPORE|If unauthorised)`

	// UOB and Citi take the first SGD figure anywhere in the text, so a balance line ahead
	// of the transaction line wins.
	CardAmountPattern   = `(?i)SGD` + ws + `?(\d+\.\d{2})\b`
	CardMerchantPattern = `(?i)at` + ws + `+([A-Z0-9` + normalize.SpaceClass + `]+?)\.`
)

// DefaultTestMarker in a subject routes the email to the DBS rule before bank detection.
const DefaultTestMarker = "[TEST]"

// DefaultRules returns the built-in rule table in dispatch order.
func DefaultRules() []Rule {
	return []Rule{
		MustCompile(model.BankDBS, []string{"DBS", "POSB"}, DBSAmountPattern, DBSMerchantPattern),
		MustCompile(model.BankUOB, []string{"UOB"}, CardAmountPattern, CardMerchantPattern),
		MustCompile(model.BankCiti, []string{"Citi"}, CardAmountPattern, CardMerchantPattern),
	}
}
