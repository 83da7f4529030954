package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

// InsertTransactions appends ingested transactions to the corpus.
func (s *SQLiteStorage) InsertTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(txns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (date, description, merchant, amount, label, source)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		var date any
		if !t.Date.IsZero() {
			date = t.Date
		}
		if _, err := stmt.ExecContext(ctx, date, t.Description, t.Merchant, t.Amount, t.Label, t.Source); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("inserted transactions", "count", len(txns))
	return nil
}

// ListLabeledTransactions returns all corpus transactions carrying a
// label, in insertion order.
func (s *SQLiteStorage) ListLabeledTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, description, merchant, amount, label, source
		FROM transactions
		WHERE label IS NOT NULL AND label != ''
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date sql.NullTime
		var merchant, source sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&date, &t.Description, &merchant, &amount, &t.Label, &source); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if date.Valid {
			t.Date = date.Time
		}
		t.Merchant = merchant.String
		t.Amount = amount.Float64
		t.Source = source.String
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// ReplaceTrainingRows atomically replaces the processed training corpus.
func (s *SQLiteStorage) ReplaceTrainingRows(ctx context.Context, rowsIn []model.TrainingRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM training_rows`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear training rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO training_rows (text, label) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rowsIn {
		if _, err := stmt.ExecContext(ctx, r.Text, r.Label); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert training row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit training rows: %w", err)
	}

	slog.Info("replaced training rows", "count", len(rowsIn))
	return nil
}

// ListTrainingRows returns the processed training corpus in insertion
// order.
func (s *SQLiteStorage) ListTrainingRows(ctx context.Context) ([]model.TrainingRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT text, label FROM training_rows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training rows: %w", err)
	}
	defer rows.Close()

	var out []model.TrainingRow
	for rows.Next() {
		var r model.TrainingRow
		if err := rows.Scan(&r.Text, &r.Label); err != nil {
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training rows: %w", err)
	}

	return out, nil
}
