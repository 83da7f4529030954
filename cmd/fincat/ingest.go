package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suriya2318/AI-FinCatTransaction/internal/ingest"
	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Import bank exports into the transaction corpus",
		Long: `Import CSV and OFX/QFX bank exports into the local transaction corpus.

CSV columns are canonicalized from common export schemas (description,
memo, payee, amount, category, ...). OFX/QFX statements are parsed as
downloaded from the bank.

Examples:
  fincat ingest exports/*.csv
  fincat ingest checking.qfx savings.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Ingesting files..."))

	var total int
	for _, path := range args {
		var txns []model.Transaction
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ofx", ".qfx":
			txns, err = ingest.ReadOFX(path)
		case ".csv":
			txns, err = ingest.ReadCSV(path)
		default:
			return fmt.Errorf("unsupported file type: %s", path)
		}
		if err != nil {
			return err
		}

		if err := db.InsertTransactions(ctx, txns); err != nil {
			return err
		}
		total += len(txns)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	slog.Info("ingest complete",
		"files", len(args),
		"transactions", total)
	cmd.Printf("Ingested %d transactions from %d files\n", total, len(args))
	return nil
}
