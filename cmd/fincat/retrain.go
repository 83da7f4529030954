package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
	"github.com/suriya2318/AI-FinCatTransaction/internal/textnorm"
)

func retrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Refit the model with accumulated feedback corrections",
		Long: `Refit the model with accumulated feedback corrections.

Merges the preprocessed training rows with every correction recorded by
"fincat feedback" and fits a fresh model artifact, replacing the current
one. Feedback rows are normalized the same way training rows are.`,
		Args: cobra.NoArgs,
		RunE: runRetrain,
	}
}

func runRetrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	rows, err := db.ListTrainingRows(ctx)
	if err != nil {
		return err
	}

	feedback, err := db.ListFeedback(ctx)
	if err != nil {
		return err
	}

	merged := make([]model.TrainingRow, 0, len(rows)+len(feedback))
	merged = append(merged, rows...)
	for _, entry := range feedback {
		text := textnorm.Normalize(entry.Text)
		if text == "" {
			continue
		}
		merged = append(merged, model.TrainingRow{Text: text, Label: entry.LabelID})
	}

	slog.Info("retraining with feedback",
		"base_rows", len(rows),
		"feedback", len(feedback))

	return fitAndSave(cmd, merged)
}
