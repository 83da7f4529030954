package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

// AppendFeedback records one user correction. Feedback is append-only;
// it never mutates the in-memory taxonomy or the loaded model, and is
// only consumed by a later retraining run.
func (s *SQLiteStorage) AppendFeedback(ctx context.Context, text, labelID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("feedback text cannot be empty")
	}
	if labelID == "" {
		return fmt.Errorf("feedback label cannot be empty")
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (text, label_id) VALUES (?, ?)`, text, labelID); err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}

	slog.Info("saved feedback",
		"label", labelID)
	return nil
}

// ListFeedback returns all recorded corrections, oldest first.
func (s *SQLiteStorage) ListFeedback(ctx context.Context) ([]model.FeedbackEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, label_id, created_at FROM feedback ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var entries []model.FeedbackEntry
	for rows.Next() {
		var e model.FeedbackEntry
		if err := rows.Scan(&e.ID, &e.Text, &e.LabelID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return entries, nil
}
