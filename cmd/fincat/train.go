package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
	"github.com/suriya2318/AI-FinCatTransaction/internal/trainer"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Fit the categorization model from preprocessed training rows",
		Long: `Fit the categorization model from preprocessed training rows.

Reads the training table built by "fincat preprocess", fits the TF-IDF
naive Bayes baseline, reports holdout accuracy, and writes the model
artifact that "fincat classify" loads.`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
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

	return fitAndSave(cmd, rows)
}

// fitAndSave runs a training pass over the given rows and writes the
// model artifact. Shared by the train and retrain commands.
func fitAndSave(cmd *cobra.Command, rows []model.TrainingRow) error {
	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Training model..."))

	opts := trainer.Options{
		Progress: func(done, total int) {
			_ = bar.Set(done)
		},
	}

	artifact, report, err := trainer.Train(rows, opts)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	path := modelPath()
	if err := artifact.Save(path); err != nil {
		return fmt.Errorf("saving model artifact: %w", err)
	}

	slog.Info("training complete",
		"examples", report.Examples,
		"classes", report.Classes,
		"holdout", report.Holdout,
		"accuracy", report.Accuracy,
		"model", path)

	cmd.Printf("Trained on %d examples across %d classes\n", report.Examples, report.Classes)
	if report.Holdout > 0 {
		cmd.Printf("Holdout accuracy: %.1f%% (%d examples)\n", report.Accuracy*100, report.Holdout)
	}

	labels := make([]string, 0, len(report.ClassCounts))
	for label := range report.ClassCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		cmd.Printf("  %-20s %d\n", label, report.ClassCounts[label])
	}

	cmd.Printf("Model written to %s\n", path)
	return nil
}
