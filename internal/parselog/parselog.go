// Package parselog records the outcome of every ingested email, including the ones no rule
// matched, so they can be reviewed by hand.
package parselog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spendsync/spendsync/internal/model"
)

// Outcome classifies how an email was handled.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no-match"
	OutcomeError   Outcome = "error"
)

// Entry is one row in the parse log.
type Entry struct {
	Timestamp time.Time
	File      string
	Outcome   Outcome
	Bank      model.Bank // detected bank; Unknown when none
	Details   string
	TxnID     string // ledger id when matched
}

// Header is the CSV header for parse-log.csv.
const Header = "timestamp,file,outcome,bank,details,txn_id"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/parse-log.csv"
	colTimestamp = 0
	colFile      = 1
	colOutcome   = 2
	colBank      = 3
	colDetails   = 4
	colTxnID     = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFile] = e.File
	row[colOutcome] = string(e.Outcome)
	row[colBank] = string(e.Bank)
	row[colDetails] = e.Details
	row[colTxnID] = e.TxnID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		File:      record[colFile],
		Outcome:   Outcome(record[colOutcome]),
		Bank:      model.Bank(record[colBank]),
		Details:   record[colDetails],
		TxnID:     record[colTxnID],
	}, nil
}

// Append writes entries to <repoRoot>/logs/parse-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(repoRoot, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening parse log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/parse-log.csv.
// Returns nil if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening parse log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading parse log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
