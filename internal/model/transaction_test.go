package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBank(t *testing.T) {
	tests := []struct {
		in   string
		want Bank
	}{
		{"DBS", BankDBS},
		{"dbs", BankDBS},
		{" UOB ", BankUOB},
		{"CITI", BankCiti},
		{"unknown", BankUnknown},
	}
	for _, tt := range tests {
		got, err := ParseBank(tt.in)
		require.NoError(t, err, "ParseBank(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseBank(%q)", tt.in)
	}
}

func TestParseBank_Rejects(t *testing.T) {
	_, err := ParseBank("OCBC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCBC")
}

func TestParseTxnType(t *testing.T) {
	got, err := ParseTxnType("Debit")
	require.NoError(t, err)
	assert.Equal(t, TxnDebit, got)

	got, err = ParseTxnType("credit")
	require.NoError(t, err)
	assert.Equal(t, TxnCredit, got)

	_, err = ParseTxnType("refund")
	assert.Error(t, err)
}

func TestParsedTransaction_String(t *testing.T) {
	txn := ParsedTransaction{
		Amount:   decimal.RequireFromString("15.00"),
		Merchant: "SHOPEE",
		Date:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Bank:     BankDBS,
		Type:     TxnDebit,
		Currency: "SGD",
	}
	assert.Equal(t, "DBS debit SGD 15.00 SHOPEE", txn.String())
}
