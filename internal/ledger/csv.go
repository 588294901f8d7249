package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendsync/spendsync/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,date,bank,merchant,amount,currency,type,message_id,source"

const (
	numFields   = 9
	dateFormat  = time.RFC3339
	colID       = 0
	colDate     = 1
	colBank     = 2
	colMerchant = 3
	colAmount   = 4
	colCurrency = 5
	colType     = 6
	colMsgID    = 7
	colSource   = 8
)

// Record is one row of the ledger.
type Record struct {
	ID        string
	Date      time.Time
	Bank      model.Bank
	Merchant  string
	Amount    decimal.Decimal
	Currency  string
	Type      model.TxnType
	MessageID string // raw message identifier, kept so callers can deduplicate
	Source    string // file the email was read from
}

// FromTransaction wraps a parsed transaction as an unnumbered Record.
func FromTransaction(txn *model.ParsedTransaction, messageID, source string) Record {
	return Record{
		Date:      txn.Date,
		Bank:      txn.Bank,
		Merchant:  txn.Merchant,
		Amount:    txn.Amount,
		Currency:  txn.Currency,
		Type:      txn.Type,
		MessageID: messageID,
		Source:    source,
	}
}

// ReadRecords reads all records from a transactions.csv reader.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var recs []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteRecords writes records to a transactions.csv writer (including header).
func WriteRecords(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendRecords appends records to an existing transactions.csv writer (no header).
func AppendRecords(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(rec Record) []string {
	row := make([]string, numFields)
	row[colID] = rec.ID
	row[colDate] = rec.Date.Format(dateFormat)
	row[colBank] = string(rec.Bank)
	row[colMerchant] = rec.Merchant
	row[colAmount] = rec.Amount.StringFixed(2)
	row[colCurrency] = rec.Currency
	row[colType] = string(rec.Type)
	row[colMsgID] = rec.MessageID
	row[colSource] = rec.Source
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return Record{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}

	bank, err := model.ParseBank(row[colBank])
	if err != nil {
		return Record{}, fmt.Errorf("parsing bank: %w", err)
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return Record{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	typ, err := model.ParseTxnType(row[colType])
	if err != nil {
		return Record{}, fmt.Errorf("parsing type: %w", err)
	}

	return Record{
		ID:        row[colID],
		Date:      date,
		Bank:      bank,
		Merchant:  row[colMerchant],
		Amount:    amount,
		Currency:  row[colCurrency],
		Type:      typ,
		MessageID: row[colMsgID],
		Source:    row[colSource],
	}, nil
}
