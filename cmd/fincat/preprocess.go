package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
	"github.com/suriya2318/AI-FinCatTransaction/internal/textnorm"
)

func preprocessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess",
		Short: "Build normalized training rows from labeled transactions",
		Long: `Build normalized training rows from labeled transactions.

Each labeled transaction's text is normalized (case folding, accent
stripping, long digit runs replaced with a number token) and written to
the training table, replacing any previous rows. Run this before
"fincat train".`,
		Args: cobra.NoArgs,
		RunE: runPreprocess,
	}
}

func runPreprocess(cmd *cobra.Command, args []string) error {
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

	txns, err := db.ListLabeledTransactions(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.TrainingRow, 0, len(txns))
	skipped := 0
	for _, txn := range txns {
		text := textnorm.Normalize(txn.Text())
		if text == "" {
			skipped++
			continue
		}
		rows = append(rows, model.TrainingRow{Text: text, Label: txn.Label})
	}

	if err := db.ReplaceTrainingRows(ctx, rows); err != nil {
		return err
	}

	slog.Info("preprocess complete",
		"labeled", len(txns),
		"rows", len(rows),
		"skipped", skipped)
	cmd.Printf("Wrote %d training rows from %d labeled transactions\n", len(rows), len(txns))
	return nil
}
