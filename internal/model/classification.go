// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"sort"
)

// MatchKind indicates how an alias lookup matched a category.
type MatchKind string

// Alias match kinds, ordered from most to least precise.
const (
	MatchToken     MatchKind = "token"
	MatchSubstring MatchKind = "substring"
	MatchNone      MatchKind = "none"
)

// Candidate is one (category, probability) pair in a ranked result.
type Candidate struct {
	CategoryID  string
	Probability float64
}

// Candidates is a probability-ranked list of classification candidates.
type Candidates []Candidate

// Rank sorts candidates by probability descending. Ties keep their
// original order so the label universe order stays deterministic.
func (c Candidates) Rank() {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Probability > c[j].Probability
	})
}

// TopN returns the N highest-probability candidates after ranking.
func (c Candidates) TopN(n int) Candidates {
	c.Rank()
	if n <= 0 {
		return Candidates{}
	}
	if n > len(c) {
		n = len(c)
	}
	out := make(Candidates, n)
	copy(out, c[:n])
	return out
}

// ClassificationResult is the final ranked prediction for one input text.
type ClassificationResult struct {
	Text          string
	Prediction    string
	Confidence    float64
	Candidates    Candidates
	AliasOverride bool
}

// Validate checks the structural invariants of a result.
func (r *ClassificationResult) Validate() error {
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", r.Confidence)
	}
	if len(r.Candidates) == 0 {
		return fmt.Errorf("result must contain at least one candidate")
	}
	if r.Candidates[0].CategoryID != r.Prediction {
		return fmt.Errorf("prediction %q does not match top candidate %q",
			r.Prediction, r.Candidates[0].CategoryID)
	}
	return nil
}

// Degenerate reports whether the result is the no-signal fallback
// produced when no reliable probability could be obtained.
func (r *ClassificationResult) Degenerate() bool {
	return !r.AliasOverride && r.Confidence == 0 && len(r.Candidates) == 1
}
