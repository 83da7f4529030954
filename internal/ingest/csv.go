// Package ingest canonicalizes heterogeneous bank exports (CSV and
// OFX/QFX) into the transaction corpus.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

// Candidate header names for each canonical column, checked in order.
// Bank exports disagree wildly on naming; first present wins.
var (
	textColumns     = []string{"transaction", "description", "memo", "notes", "text"}
	merchantColumns = []string{"merchant", "vendor", "payee"}
	amountColumns   = []string{"amount", "amt", "value"}
	labelColumns    = []string{"label", "category", "cat"}
	dateColumns     = []string{"date", "posted", "transaction_date"}
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02", time.RFC3339}

// ReadCSV parses one CSV export into canonical transactions. Rows
// without any usable description are synthesized from merchant and
// description fragments, matching how mixed exports are merged.
func ReadCSV(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	source := filepath.Base(path)
	txns := make([]model.Transaction, 0, len(records)-1)

	for _, record := range records[1:] {
		txn := canonicalizeRow(header, record)
		txn.Source = source
		if txn.Description == "" && txn.Merchant == "" {
			continue
		}
		if txn.Description == "" {
			txn.Description = txn.Merchant
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

func canonicalizeRow(header map[string]int, record []string) model.Transaction {
	var txn model.Transaction

	txn.Description = firstField(header, record, textColumns)
	txn.Merchant = firstField(header, record, merchantColumns)
	txn.Label = firstField(header, record, labelColumns)

	if raw := firstField(header, record, amountColumns); raw != "" {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			txn.Amount = amount
		}
	}

	if raw := firstField(header, record, dateColumns); raw != "" {
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, raw); err == nil {
				txn.Date = d
				break
			}
		}
	}

	return txn
}

func firstField(header map[string]int, record []string, candidates []string) string {
	for _, name := range candidates {
		if idx, ok := header[name]; ok && idx < len(record) {
			if v := strings.TrimSpace(record[idx]); v != "" {
				return v
			}
		}
	}
	return ""
}
