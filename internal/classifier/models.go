package classifier

import (
	"fmt"
	"math"
)

// DistributionProvider is the direct probability capability: a full
// probability vector over the model's label universe for one input.
type DistributionProvider interface {
	PredictProba(text string) ([]float64, error)
}

// ScoreProvider is the weaker capability: raw per-class scores that
// still need a softmax to become a distribution.
type ScoreProvider interface {
	DecisionScores(text string) ([]float64, error)
}

// Capability is one named prediction strategy. The adapter tries
// capabilities strictly in declaration order.
type Capability struct {
	Predict func(text string) ([]float64, error)
	Name    string
}

// CapabilityProvider lets a model wrapper declare, at load time, which
// capabilities it implements and in which priority order.
type CapabilityProvider interface {
	Capabilities() []Capability
}

// linearModel scores text with a linear map over TF-IDF features.
type linearModel struct {
	vec *Vectorizer
	est *Estimator
}

func (m *linearModel) scores(text string) ([]float64, error) {
	features := m.vec.Transform(text)

	out := make([]float64, len(m.est.Coef))
	for c, row := range m.est.Coef {
		score := m.est.Intercept[c]
		for idx, w := range features {
			score += row[idx] * w
		}
		out[c] = score
	}
	return out, nil
}

// logisticModel exposes calibrated probabilities directly; its decision
// scores remain available as the lower-priority capability.
type logisticModel struct {
	linearModel
}

func (m *logisticModel) PredictProba(text string) ([]float64, error) {
	scores, err := m.scores(text)
	if err != nil {
		return nil, err
	}
	return softmax(scores), nil
}

func (m *logisticModel) DecisionScores(text string) ([]float64, error) {
	return m.scores(text)
}

func (m *logisticModel) Capabilities() []Capability {
	return []Capability{
		{Name: "distribution", Predict: m.PredictProba},
		{Name: "score", Predict: softmaxed(m.DecisionScores)},
	}
}

// naiveBayesModel only produces log-joint scores; it has no direct
// probability interface, so callers go through the softmax fallback.
type naiveBayesModel struct {
	linearModel
}

func (m *naiveBayesModel) DecisionScores(text string) ([]float64, error) {
	return m.scores(text)
}

func (m *naiveBayesModel) Capabilities() []Capability {
	return []Capability{
		{Name: "score", Predict: softmaxed(m.DecisionScores)},
	}
}

// newModel builds the concrete wrapper for an artifact's estimator.
func newModel(artifact *Artifact) (CapabilityProvider, error) {
	vec, est, err := artifact.components()
	if err != nil {
		return nil, err
	}

	base := linearModel{vec: vec, est: est}
	switch est.Kind {
	case KindLogisticRegression:
		return &logisticModel{base}, nil
	case KindMultinomialNB:
		return &naiveBayesModel{base}, nil
	default:
		return nil, fmt.Errorf("unsupported estimator kind %q", est.Kind)
	}
}

// softmax converts raw scores to a distribution, subtracting the row
// maximum before exponentiating so large scores cannot overflow.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		e := math.Exp(s - maxScore)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// softmaxed adapts a score function into a distribution function.
func softmaxed(fn func(string) ([]float64, error)) func(string) ([]float64, error) {
	return func(text string) ([]float64, error) {
		scores, err := fn(text)
		if err != nil {
			return nil, err
		}
		return softmax(scores), nil
	}
}
