package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spendsync/spendsync/internal/id"
)

// FileName is the per-month ledger file.
const FileName = "transactions.csv"

// Service stores records in <repoRoot>/YYYY/MM/transactions.csv.
type Service struct {
	repoRoot string
}

// NewService creates a ledger Service.
func NewService(repoRoot string) *Service {
	return &Service{repoRoot: repoRoot}
}

type monthKey struct{ year, month int }

// Append numbers recs within their month and appends them to the month files.
// Records keep their input order; the numbered copies are returned.
func (s *Service) Append(recs []Record) ([]Record, error) {
	numbered, err := s.Number(recs)
	if err != nil {
		return nil, err
	}
	if err := s.Write(numbered); err != nil {
		return nil, err
	}
	return numbered, nil
}

// Number returns copies of recs with ids continuing each month's sequence. Nothing is
// written; pass the result to Write.
func (s *Service) Number(recs []Record) ([]Record, error) {
	out := make([]Record, len(recs))
	next := make(map[monthKey]int)
	for i, rec := range recs {
		k := keyOf(rec)
		seq, ok := next[k]
		if !ok {
			var err error
			if seq, err = s.NextSeq(k.year, k.month); err != nil {
				return nil, err
			}
		}
		rec.ID = id.FormatTxnID(k.year, k.month, seq)
		next[k] = seq + 1
		out[i] = rec
	}
	return out, nil
}

// Write appends already numbered records to their month files.
func (s *Service) Write(recs []Record) error {
	byMonth := make(map[monthKey][]Record)
	var order []monthKey
	for _, rec := range recs {
		k := keyOf(rec)
		if _, seen := byMonth[k]; !seen {
			order = append(order, k)
		}
		byMonth[k] = append(byMonth[k], rec)
	}

	for _, k := range order {
		if err := s.appendMonth(k.year, k.month, byMonth[k]); err != nil {
			return err
		}
	}
	return nil
}

func keyOf(rec Record) monthKey {
	return monthKey{rec.Date.Year(), int(rec.Date.Month())}
}

func (s *Service) appendMonth(year, month int, recs []Record) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	if isNew {
		err = WriteRecords(f, recs)
	} else {
		err = AppendRecords(f, recs)
	}
	if err != nil {
		return fmt.Errorf("writing ledger %s: %w", path, err)
	}
	return nil
}

// ReadMonth reads all records for a given month. Returns nil if the file does not exist.
func (s *Service) ReadMonth(year, month int) ([]Record, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return recs, nil
}

// NextSeq returns the next available sequence number for a month.
func (s *Service) NextSeq(year, month int) (int, error) {
	recs, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, rec := range recs {
		_, _, seq, err := id.ParseTxnID(rec.ID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), FileName)
}
