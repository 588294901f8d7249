package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsync/spendsync/internal/inbox"
	"github.com/spendsync/spendsync/internal/ledger"
	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/parselog"
	"github.com/spendsync/spendsync/internal/parser"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRecord_Fixtures(t *testing.T) {
	dir := t.TempDir()
	seedInbox(t, dir, fixtures...)

	results, err := NewPipeline(parser.NewDefault(), 4, nil).Run(context.Background(), scan(t, dir))
	require.NoError(t, err)

	sum, err := Record(dir, results, now)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Matched)
	assert.Equal(t, 1, sum.NoMatch)
	assert.Equal(t, 0, sum.Failed)
	require.Len(t, sum.Records, 4)
	assert.Equal(t, "2025-03-001", sum.Records[0].ID)
	assert.Equal(t, "citi_card.eml", sum.Records[0].Source)
	assert.Equal(t, "2025-03-004", sum.Records[3].ID)

	recs, err := ledger.NewService(dir).ReadMonth(2025, 3)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, model.BankDBS, recs[1].Bank)
	assert.Equal(t, "GRAB", recs[1].Merchant)
	assert.Equal(t, "<dbs-0001@example.com>", recs[1].MessageID)

	entries, err := parselog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, parselog.OutcomeNoMatch, entries[2].Outcome)
	assert.Equal(t, "newsletter.eml", entries[2].File)
	assert.Equal(t, "<news-0004@example.com>", entries[2].Details)
	assert.Equal(t, parselog.OutcomeMatched, entries[1].Outcome)
	assert.Equal(t, "2025-03-002", entries[1].TxnID)
	assert.Equal(t, "DBS debit SGD 42.80 GRAB", entries[1].Details)
}

func TestRecord_Errors(t *testing.T) {
	dir := t.TempDir()
	results := []Result{{
		File: inbox.FileInfo{Name: "bad.eml"},
		Bank: model.BankUnknown,
		Err:  errors.New("reading bad.eml: boom"),
	}}

	sum, err := Record(dir, results, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Empty(t, sum.Records)

	entries, err := parselog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, parselog.OutcomeError, entries[0].Outcome)
	assert.Contains(t, entries[0].Details, "boom")
}

func TestRecord_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	sum, err := Record(dir, nil, now)
	require.NoError(t, err)
	assert.Equal(t, Summary{Records: []ledger.Record{}}, sum)

	entries, err := parselog.Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRecord_ParseLogFailureLeavesLedgerUntouched(t *testing.T) {
	dir := t.TempDir()
	seedInbox(t, dir, "dbs_card.eml")
	results, err := NewPipeline(parser.NewDefault(), 1, nil).Run(context.Background(), scan(t, dir))
	require.NoError(t, err)

	// A file where the logs directory belongs makes the parse log unwritable.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs"), []byte("x"), 0o644))

	_, err = Record(dir, results, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing parse log")

	recs, err := ledger.NewService(dir).ReadMonth(2025, 3)
	require.NoError(t, err)
	assert.Nil(t, recs)
}
