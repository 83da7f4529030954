package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
	"github.com/suriya2318/AI-FinCatTransaction/internal/taxonomy"
)

const testTaxonomy = `
categories:
  - id: dining
    display_name: Food & Dining
    aliases: [starbucks, cafe]
  - id: fuel
    aliases: [shell, exxon, gas]
`

// stubClassifier returns a fixed distribution, optionally sleeping a
// per-text duration to skew completion order.
type stubClassifier struct {
	delays       map[string]time.Duration
	distribution model.Candidates
	labels       []string
	degenerate   bool
}

func (s *stubClassifier) PredictDistribution(text string) (model.Candidates, []string) {
	if d, ok := s.delays[text]; ok {
		time.Sleep(d)
	}
	if s.degenerate {
		return model.Candidates{{CategoryID: "dining", Probability: 0.0}}, s.labels
	}
	out := make(model.Candidates, len(s.distribution))
	copy(out, s.distribution)
	return out, s.labels
}

func newTestEngine(t *testing.T, clf Classifier) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTaxonomy), 0o600))
	store := taxonomy.NewStore(path)
	require.NoError(t, store.Load())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, clf, logger)
}

func defaultStub() *stubClassifier {
	return &stubClassifier{
		labels: []string{"dining", "fuel", "shopping"},
		distribution: model.Candidates{
			{CategoryID: "dining", Probability: 0.2},
			{CategoryID: "fuel", Probability: 0.3},
			{CategoryID: "shopping", Probability: 0.5},
		},
	}
}

func TestEngine_TokenAliasOverridesClassifier(t *testing.T) {
	e := newTestEngine(t, defaultStub())

	result, err := e.ClassifyOne(context.Background(), "STARBUCKS 123", 3)
	require.NoError(t, err)

	assert.Equal(t, "dining", result.Prediction)
	assert.True(t, result.AliasOverride)
	assert.GreaterOrEqual(t, result.Confidence, 0.99)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "dining", result.Candidates[0].CategoryID)
	require.NoError(t, result.Validate())
}

func TestEngine_SubstringNeverOverrides(t *testing.T) {
	e := newTestEngine(t, defaultStub())

	// "gas" is a 3-char alias: no token match and below the substring
	// length gate, so the classifier decides.
	result, err := e.ClassifyOne(context.Background(), "Vegas Weekend Trip", 3)
	require.NoError(t, err)
	assert.False(t, result.AliasOverride)
	assert.Equal(t, "shopping", result.Prediction)

	// "cafeteria" contains the 4-char alias "cafe" as a substring; the
	// hint is informational only and must not override.
	result, err = e.ClassifyOne(context.Background(), "HOSPITAL CAFETERIA LLC", 3)
	require.NoError(t, err)
	assert.False(t, result.AliasOverride)
	assert.Equal(t, "shopping", result.Prediction)
}

func TestEngine_ModelPathRankingAndTopK(t *testing.T) {
	e := newTestEngine(t, defaultStub())

	result, err := e.ClassifyOne(context.Background(), "Unknown Merchant XYZ", 2)
	require.NoError(t, err)

	assert.False(t, result.AliasOverride)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "shopping", result.Candidates[0].CategoryID)
	assert.Equal(t, "fuel", result.Candidates[1].CategoryID)
	assert.Equal(t, result.Candidates[0].Probability, result.Confidence)
	require.NoError(t, result.Validate())
}

func TestEngine_TieBreakKeepsLabelUniverseOrder(t *testing.T) {
	clf := &stubClassifier{
		labels: []string{"a", "b", "c"},
		distribution: model.Candidates{
			{CategoryID: "a", Probability: 0.4},
			{CategoryID: "b", Probability: 0.4},
			{CategoryID: "c", Probability: 0.2},
		},
	}
	e := newTestEngine(t, clf)

	result, err := e.ClassifyOne(context.Background(), "no alias here", 3)
	require.NoError(t, err)
	assert.Equal(t, "a", result.Candidates[0].CategoryID)
	assert.Equal(t, "b", result.Candidates[1].CategoryID)
}

func TestEngine_DegenerateFallback(t *testing.T) {
	clf := defaultStub()
	clf.degenerate = true
	e := newTestEngine(t, clf)

	result, err := e.ClassifyOne(context.Background(), "mystery merchant", 5)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Confidence)
	assert.Len(t, result.Candidates, 1)
	assert.True(t, result.Degenerate())
}

func TestEngine_EmptyTextNeverErrors(t *testing.T) {
	e := newTestEngine(t, defaultStub())

	results, err := e.Classify(context.Background(), []string{"", "   ", "!!!"}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.False(t, r.AliasOverride)
		assert.NotEmpty(t, r.Candidates)
	}
}

func TestEngine_BatchPreservesInputOrder(t *testing.T) {
	// Skew per-text latency so completion order differs from input
	// order; output order must still match input order.
	clf := defaultStub()
	clf.delays = map[string]time.Duration{
		"first":  50 * time.Millisecond,
		"second": 20 * time.Millisecond,
		"third":  0,
	}
	e := newTestEngine(t, clf)

	texts := []string{"first", "second", "third", "STARBUCKS 42"}
	results, err := e.Classify(context.Background(), texts, 1)
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	for i, r := range results {
		assert.Equal(t, texts[i], r.Text)
	}
	assert.True(t, results[3].AliasOverride)
}

func TestEngine_InvalidTopK(t *testing.T) {
	e := newTestEngine(t, defaultStub())
	_, err := e.Classify(context.Background(), []string{"x"}, 0)
	assert.Error(t, err)
}

func TestEngine_LargeBatch(t *testing.T) {
	e := newTestEngine(t, defaultStub())

	texts := make([]string, 100)
	for i := range texts {
		texts[i] = fmt.Sprintf("merchant %d", i)
	}
	results, err := e.Classify(context.Background(), texts, 3)
	require.NoError(t, err)
	require.Len(t, results, 100)
	for i, r := range results {
		assert.Equal(t, texts[i], r.Text)
	}
}
