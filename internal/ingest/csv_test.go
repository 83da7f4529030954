package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadCSV_CanonicalColumns(t *testing.T) {
	path := writeCSV(t, `transaction,merchant,amount,label,date
STARBUCKS STORE 123,Starbucks,-4.50,dining,2025-03-01
SHELL OIL 4521,Shell,-40.00,fuel,2025-03-02
`)

	txns, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "STARBUCKS STORE 123", txns[0].Description)
	assert.Equal(t, "Starbucks", txns[0].Merchant)
	assert.InDelta(t, -4.50, txns[0].Amount, 1e-9)
	assert.Equal(t, "dining", txns[0].Label)
	assert.Equal(t, 2025, txns[0].Date.Year())
	assert.Equal(t, "export.csv", txns[0].Source)
}

func TestReadCSV_AlternateHeaders(t *testing.T) {
	// description/vendor/amt/category instead of the canonical names.
	path := writeCSV(t, `description,vendor,amt,category
AMZN Mktp US,Amazon,"1,234.00",shopping
`)

	txns, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "AMZN Mktp US", txns[0].Description)
	assert.Equal(t, "Amazon", txns[0].Merchant)
	assert.InDelta(t, 1234.00, txns[0].Amount, 1e-9)
	assert.Equal(t, "shopping", txns[0].Label)
}

func TestReadCSV_MerchantOnlyRows(t *testing.T) {
	path := writeCSV(t, `payee,amount
Local Grocer,-12.00
,
`)

	txns, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	// Description synthesized from the merchant; blank rows dropped.
	assert.Equal(t, "Local Grocer", txns[0].Description)
	assert.Equal(t, "Local Grocer", txns[0].Merchant)
}

func TestReadCSV_EmptyFile(t *testing.T) {
	path := writeCSV(t, "transaction,label\n")
	txns, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"POS PURCHASE SHELL OIL", "SHELL OIL"},
		{"03/14 TRADER JOES", "TRADER JOES"},
		{"  Plain Merchant ", "Plain Merchant"},
		{"DEBIT CARD PURCHASE STARBUCKS 99", "STARBUCKS 99"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanDescription(tt.in), tt.in)
	}
}
