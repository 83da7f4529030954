// Package engine orchestrates normalization, alias lookup, and the
// classifier adapter into a single ranked prediction per input text.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
	"github.com/suriya2318/AI-FinCatTransaction/internal/taxonomy"
	"github.com/suriya2318/AI-FinCatTransaction/internal/textnorm"
)

// AliasOverrideConfidence is the calibrated confidence assigned when a
// token alias match bypasses the statistical classifier.
const AliasOverrideConfidence = 0.99

// maxParallel bounds how many texts of one batch classify concurrently.
const maxParallel = 8

// Classifier produces a probability distribution over the model's
// label universe. Implementations never fail; degraded output is a
// single zero-probability candidate.
type Classifier interface {
	PredictDistribution(text string) (model.Candidates, []string)
}

// Engine is the resolution engine. It holds only immutable shared
// state (the taxonomy store singleton and the loaded classifier), so
// classification calls are independent and side-effect-free.
type Engine struct {
	taxonomy   *taxonomy.Store
	classifier Classifier
	logger     *slog.Logger
}

// New creates a resolution engine over an already-constructed taxonomy
// store and classifier adapter.
func New(store *taxonomy.Store, clf Classifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		taxonomy:   store,
		classifier: clf,
		logger:     logger,
	}
}

// Classify categorizes each text and returns exactly one result per
// input, in input order. Texts are processed in parallel; completion
// order never affects output order. Malformed or empty texts flow
// through the degenerate classifier fallback rather than erroring.
func (e *Engine) Classify(ctx context.Context, texts []string, topK int) ([]model.ClassificationResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("top_k must be at least 1, got %d", topK)
	}

	results := make([]model.ClassificationResult, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = e.classifyOne(text, topK)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ClassifyOne categorizes a single text.
func (e *Engine) ClassifyOne(ctx context.Context, text string, topK int) (model.ClassificationResult, error) {
	results, err := e.Classify(ctx, []string{text}, topK)
	if err != nil {
		return model.ClassificationResult{}, err
	}
	return results[0], nil
}

func (e *Engine) classifyOne(text string, topK int) model.ClassificationResult {
	normalized := textnorm.Normalize(text)

	// Alias lookup runs against the raw text: hand-authored aliases may
	// carry punctuation or casing patterns normalization would destroy.
	aliasID, kind, err := e.taxonomy.AliasLookup(text)
	if err != nil {
		// Startup loads the taxonomy eagerly, so an implicit-load
		// failure here is unexpected; fall through to the classifier.
		e.logger.Error("alias lookup failed",
			"error", err)
		kind = model.MatchNone
	}

	if kind == model.MatchToken {
		// Token matches anchor on whole-word boundaries and are treated
		// as near-certain, overriding whatever the model would say.
		e.logger.Debug("alias override",
			"category", aliasID,
			"text", text)
		return model.ClassificationResult{
			Text:          text,
			Prediction:    aliasID,
			Confidence:    AliasOverrideConfidence,
			Candidates:    model.Candidates{{CategoryID: aliasID, Probability: AliasOverrideConfidence}},
			AliasOverride: true,
		}
	}

	if kind == model.MatchSubstring {
		// Too low precision to override a trained model; logged for
		// explainability only.
		e.logger.Debug("alias substring hint ignored",
			"category", aliasID,
			"text", text)
	}

	distribution, _ := e.classifier.PredictDistribution(normalized)
	candidates := distribution.TopN(topK)

	result := model.ClassificationResult{
		Text:       text,
		Candidates: candidates,
	}
	if len(candidates) > 0 {
		result.Prediction = candidates[0].CategoryID
		result.Confidence = candidates[0].Probability
	}
	return result
}
