package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suriya2318/AI-FinCatTransaction/internal/common"
	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

func feedbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback [text...]",
		Short: "Review predictions and record corrections",
		Long: `Review predictions interactively and record corrections.

Each text is classified and the prediction shown for confirmation.
Rejected predictions prompt for the right category, by number, id, or
display name. Corrections accumulate until "fincat retrain" folds them
back into the model.

Examples:
  fincat feedback "AMZN MKTP US*2H4T"
  fincat feedback "SQ *BLUE BOTTLE" "SHELL OIL 4521"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFeedback,
	}
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	topK := 3

	eng, store, err := newEngine()
	if err != nil {
		return err
	}

	categories, err := store.Categories()
	if err != nil {
		return err
	}

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	reader := bufio.NewReader(cmd.InOrStdin())
	var recorded int

	for _, text := range args {
		result, err := eng.ClassifyOne(ctx, text, topK)
		if err != nil {
			return err
		}
		printResult(cmd, result)

		cmd.Printf("Correct? [y/n] ")
		answer, err := readLine(reader)
		if err != nil {
			return err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			if result.Prediction == "" {
				continue
			}
			if err := db.AppendFeedback(ctx, text, result.Prediction); err != nil {
				return err
			}
			recorded++
		case "n", "no":
			labelID, err := promptCategory(cmd, reader, categories)
			if err != nil {
				return err
			}
			if labelID == "" {
				cmd.Println("Skipped.")
				continue
			}
			if err := db.AppendFeedback(ctx, text, labelID); err != nil {
				return err
			}
			recorded++
		default:
			cmd.Println("Skipped.")
		}
	}

	cmd.Printf("Recorded %d corrections. Run \"fincat retrain\" to apply them.\n", recorded)
	return nil
}

// promptCategory lists the taxonomy and resolves the user's answer to a
// canonical category id. An empty answer skips the entry.
func promptCategory(cmd *cobra.Command, reader *bufio.Reader, categories []model.Category) (string, error) {
	for i, cat := range categories {
		cmd.Printf("  %2d. %-20s %s\n", i+1, cat.ID, cat.DisplayName)
	}
	cmd.Printf("Category (number, id, or name; empty to skip): ")

	answer, err := readLine(reader)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", nil
	}

	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(categories) {
			return "", fmt.Errorf("category number out of range: %d", n)
		}
		return categories[n-1].ID, nil
	}

	lower := strings.ToLower(answer)
	for _, cat := range categories {
		if cat.ID == lower || strings.ToLower(cat.DisplayName) == lower {
			return cat.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownCategory, answer)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
