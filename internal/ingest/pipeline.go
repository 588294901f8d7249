// Package ingest runs inbox emails through the parser and records the results.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/spendsync/spendsync/internal/inbox"
	"github.com/spendsync/spendsync/internal/mailfile"
	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/parser"
)

const defaultWorkers = 4

// Result is the outcome of parsing one file. Txn is nil on no match or error.
type Result struct {
	File      inbox.FileInfo
	MessageID string
	Bank      model.Bank // bank the email was dispatched to, Unknown when none
	Txn       *model.ParsedTransaction
	Err       error
}

// Pipeline parses email files concurrently.
type Pipeline struct {
	parser  *parser.Parser
	workers int
	log     *log.Logger
}

// NewPipeline creates a Pipeline. workers <= 0 uses a default of 4.
func NewPipeline(p *parser.Parser, workers int, logger *log.Logger) *Pipeline {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		parser:  p,
		workers: workers,
		log:     logger.WithPrefix("ingest"),
	}
}

// Run parses every file and returns one Result per file in input order.
// Unreadable files are reported through Result.Err; Run itself fails only when ctx ends.
func (pl *Pipeline) Run(ctx context.Context, files []inbox.FileInfo) ([]Result, error) {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = pl.parseFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest canceled: %w", err)
	}
	return results, nil
}

func (pl *Pipeline) parseFile(f inbox.FileInfo) Result {
	res := Result{File: f, Bank: model.BankUnknown}

	fh, err := os.Open(f.Path)
	if err != nil {
		res.Err = fmt.Errorf("opening %s: %w", f.Name, err)
		pl.log.Error("failed to open email", "file", f.Name, "err", err)
		return res
	}
	defer fh.Close()

	msg, err := mailfile.Read(fh)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", f.Name, err)
		pl.log.Error("failed to read email", "file", f.Name, "err", err)
		return res
	}
	res.MessageID = msg.MessageID

	// The parser never reads dates from content; fall back to the file time when the
	// Date header is missing.
	date := msg.Date
	if date.IsZero() {
		date = f.ModTime
	}

	res.Bank, res.Txn = pl.parser.ParseDetailed(msg.Subject, msg.Body, date)
	if res.Txn == nil {
		pl.log.Warn("no transaction matched", "file", f.Name, "subject", msg.Subject, "bank", res.Bank)
		return res
	}

	pl.log.Info("parsed transaction",
		"file", f.Name,
		"bank", res.Txn.Bank,
		"amount", res.Txn.Amount.StringFixed(2),
		"currency", res.Txn.Currency,
		"merchant", res.Txn.Merchant,
	)
	return res
}
