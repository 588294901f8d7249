package ingest

import (
	"fmt"
	"time"

	"github.com/spendsync/spendsync/internal/ledger"
	"github.com/spendsync/spendsync/internal/parselog"
)

// Summary counts what Record wrote.
type Summary struct {
	Matched int
	NoMatch int
	Failed  int
	Records []ledger.Record // numbered ledger rows, in result order
}

// Record appends every result to the parse log and then matched results to the ledger.
// The ledger is written last: when the parse log cannot be written, no ledger row is.
func Record(repoRoot string, results []Result, now time.Time) (Summary, error) {
	var sum Summary

	var pending []ledger.Record
	var pendingIdx []int
	for i, r := range results {
		if r.Txn != nil {
			pending = append(pending, ledger.FromTransaction(r.Txn, r.MessageID, r.File.Name))
			pendingIdx = append(pendingIdx, i)
		}
	}

	svc := ledger.NewService(repoRoot)
	numbered, err := svc.Number(pending)
	if err != nil {
		return Summary{}, fmt.Errorf("numbering ledger rows: %w", err)
	}
	sum.Records = numbered

	txnIDs := make(map[int]string, len(numbered))
	for j, i := range pendingIdx {
		txnIDs[i] = numbered[j].ID
	}

	entries := make([]parselog.Entry, 0, len(results))
	for i, r := range results {
		e := parselog.Entry{
			Timestamp: now,
			File:      r.File.Name,
			Bank:      r.Bank,
		}
		switch {
		case r.Err != nil:
			sum.Failed++
			e.Outcome = parselog.OutcomeError
			e.Details = r.Err.Error()
		case r.Txn == nil:
			sum.NoMatch++
			e.Outcome = parselog.OutcomeNoMatch
			e.Details = r.MessageID
		default:
			sum.Matched++
			e.Outcome = parselog.OutcomeMatched
			e.Details = r.Txn.String()
			e.TxnID = txnIDs[i]
		}
		entries = append(entries, e)
	}

	if len(entries) > 0 {
		if err := parselog.Append(repoRoot, entries); err != nil {
			return Summary{}, fmt.Errorf("writing parse log: %w", err)
		}
	}

	if err := svc.Write(numbered); err != nil {
		return Summary{}, fmt.Errorf("writing ledger: %w", err)
	}
	return sum, nil
}
