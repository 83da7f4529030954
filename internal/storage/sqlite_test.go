package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "fincat.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Migrate(context.Background()))

	version, err := s.schemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestTransactions_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{
		{
			Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Description: "STARBUCKS STORE 123",
			Merchant:    "Starbucks",
			Amount:      -4.50,
			Label:       "dining",
			Source:      "bank.csv",
		},
		{
			Description: "UNLABELED MERCHANT",
			Amount:      -10.00,
			Source:      "bank.csv",
		},
		{
			Description: "SHELL OIL 4521",
			Label:       "fuel",
			Source:      "card.ofx",
		},
	}
	require.NoError(t, s.InsertTransactions(ctx, txns))

	labeled, err := s.ListLabeledTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, labeled, 2)
	assert.Equal(t, "STARBUCKS STORE 123", labeled[0].Description)
	assert.Equal(t, "dining", labeled[0].Label)
	assert.Equal(t, "fuel", labeled[1].Label)
}

func TestTrainingRows_Replace(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := []model.TrainingRow{
		{Text: "starbucks store", Label: "dining"},
		{Text: "shell oil num", Label: "fuel"},
	}
	require.NoError(t, s.ReplaceTrainingRows(ctx, first))

	second := []model.TrainingRow{{Text: "amazon mktp", Label: "shopping"}}
	require.NoError(t, s.ReplaceTrainingRows(ctx, second))

	rows, err := s.ListTrainingRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "shopping", rows[0].Label)
}

func TestFeedback_AppendAndList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.AppendFeedback(ctx, "SHELL OIL 4521", "fuel"))
	require.NoError(t, s.AppendFeedback(ctx, "STARBUCKS 99", "dining"))

	entries, err := s.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "fuel", entries[0].LabelID)
	assert.Equal(t, "dining", entries[1].LabelID)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestFeedback_Validation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.Error(t, s.AppendFeedback(ctx, "", "fuel"))
	assert.Error(t, s.AppendFeedback(ctx, "some text", ""))
}
