package model

import "time"

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date        time.Time
	Description string // Raw transaction description
	Merchant    string // Cleaned merchant/payee name, if the source had one
	Source      string // File or feed the transaction came from
	Label       string // Category id, when the source was pre-labeled
	Amount      float64
}

// Text returns the free-text description used for categorization,
// falling back to the merchant name when the description is empty.
func (t *Transaction) Text() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Merchant
}

// TrainingRow is one normalized (text, label) example of the processed
// training corpus.
type TrainingRow struct {
	Text  string
	Label string
}

// FeedbackEntry is one user correction captured by the feedback loop.
type FeedbackEntry struct {
	CreatedAt time.Time
	Text      string
	LabelID   string
	ID        int64
}
