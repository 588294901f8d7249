// Package parser turns bank notification emails into transactions.
//
// A Parser holds an ordered rule table. Parse normalizes the email, picks the first rule
// whose bank markers appear in the text and runs that rule's extractor. Emails from no known
// bank, or without a matching amount, produce nil rather than an error.
package parser

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/normalize"
)

const previewLen = 500

// Parser is immutable after New and safe for concurrent use.
type Parser struct {
	rules      []Rule
	testMarker string
	testBank   model.Bank
	log        *log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug traces of each parse.
func WithLogger(l *log.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l.WithPrefix("parser")
		}
	}
}

// WithTestOverride makes subjects containing marker try bank's rule before detection.
// An empty marker disables the override.
func WithTestOverride(marker string, bank model.Bank) Option {
	return func(p *Parser) {
		p.testMarker = marker
		p.testBank = bank
	}
}

// New returns a Parser that dispatches over rules in order.
func New(rules []Rule, opts ...Option) *Parser {
	p := &Parser{
		rules:      append([]Rule(nil), rules...),
		testMarker: DefaultTestMarker,
		testBank:   model.BankDBS,
		log:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDefault returns a Parser over DefaultRules.
func NewDefault(opts ...Option) *Parser {
	return New(DefaultRules(), opts...)
}

// Rules returns a copy of the rule table.
func (p *Parser) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Parse extracts a transaction from an email, or returns nil when none is found.
// date is the email's receipt time and is copied to the result as is.
func (p *Parser) Parse(subject, body string, date time.Time) *model.ParsedTransaction {
	_, txn := p.ParseDetailed(subject, body, date)
	return txn
}

// ParseDetailed is Parse that also reports the bank whose rule decided the outcome: the
// test override bank when it produced the transaction, otherwise the detected bank, or
// BankUnknown when no bank was detected.
func (p *Parser) ParseDetailed(subject, body string, date time.Time) (model.Bank, *model.ParsedTransaction) {
	text := normalize.Text(subject, body)
	p.log.Debug("normalized email", "subject", subject, "text", normalize.Preview(text, previewLen))

	if p.testMarker != "" && strings.Contains(subject, p.testMarker) {
		if r, ok := p.ruleFor(p.testBank); ok {
			if txn := p.extract(r, text, date); txn != nil {
				return r.Bank, txn
			}
		}
	}

	r, ok := p.detect(text)
	if !ok {
		p.log.Debug("no bank detected", "subject", subject)
		return model.BankUnknown, nil
	}
	return r.Bank, p.extract(r, text, date)
}

func (p *Parser) detect(text string) (Rule, bool) {
	for _, r := range p.rules {
		if r.Detects(text) {
			return r, true
		}
	}
	return Rule{}, false
}

func (p *Parser) ruleFor(bank model.Bank) (Rule, bool) {
	for _, r := range p.rules {
		if r.Bank == bank {
			return r, true
		}
	}
	return Rule{}, false
}

func (p *Parser) extract(r Rule, text string, date time.Time) *model.ParsedTransaction {
	txn := r.Extract(text, date)
	if txn == nil {
		p.log.Debug("amount not found", "bank", r.Bank)
		return nil
	}
	p.log.Debug("extracted transaction", "bank", r.Bank, "amount", txn.Amount.StringFixed(2), "merchant", txn.Merchant)
	return txn
}
