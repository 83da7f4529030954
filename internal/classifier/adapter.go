// Package classifier wraps a trained model artifact behind a
// capability-based adapter that always produces a usable distribution.
package classifier

import (
	"log/slog"
	"strconv"

	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

// UnknownLabel is the sentinel category of a degenerate result when not
// even a first label is known.
const UnknownLabel = "unknown"

// Adapter exposes a trained classifier through a single
// PredictDistribution operation. Extraction failures never escalate:
// the adapter walks its capability chain and, when everything fails,
// returns a single zero-probability candidate so the pipeline always
// produces output.
type Adapter struct {
	logger    *slog.Logger
	chain     []Capability
	labels    []string
	synthetic bool
}

// NewAdapter loads the model artifact at path and wires the adapter.
// A missing or invalid artifact is a hard error: the adapter must not
// start serving without a deserializable model.
func NewAdapter(path string, logger *slog.Logger) (*Adapter, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}

	wrapper, err := newModel(artifact)
	if err != nil {
		return nil, err
	}

	labels := artifact.resolveLabels()
	synthetic := false
	if labels == nil {
		// Last resort: positional stand-in labels. Results built on
		// them must never look like a real prediction downstream.
		_, est, _ := artifact.components()
		labels = syntheticLabels(len(est.Coef))
		synthetic = true
		logger.Warn("model artifact exposes no label universe, using positional labels",
			"path", path,
			"classes", len(labels))
	}

	a := NewAdapterForModel(wrapper, labels, logger)
	a.synthetic = synthetic
	return a, nil
}

// NewAdapterForModel wires an adapter around an already-constructed
// model wrapper. Wrappers either declare their capability order via
// CapabilityProvider or are probed for the known capability interfaces,
// direct probabilities first.
func NewAdapterForModel(m any, labels []string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	var chain []Capability
	if provider, ok := m.(CapabilityProvider); ok {
		chain = provider.Capabilities()
	} else {
		if p, ok := m.(DistributionProvider); ok {
			chain = append(chain, Capability{Name: "distribution", Predict: p.PredictProba})
		}
		if p, ok := m.(ScoreProvider); ok {
			chain = append(chain, Capability{Name: "score", Predict: softmaxed(p.DecisionScores)})
		}
	}

	return &Adapter{
		chain:  chain,
		labels: labels,
		logger: logger,
	}
}

// Labels returns the ordered label universe backing distribution
// positions.
func (a *Adapter) Labels() []string {
	return a.labels
}

// Synthetic reports whether the label universe consists of positional
// stand-ins rather than recovered class labels.
func (a *Adapter) Synthetic() bool {
	return a.synthetic
}

// PredictDistribution returns one candidate per label of the label
// universe, in label-universe order, with probabilities from the first
// capability that succeeds. It never fails: exhausting the chain (or a
// synthetic label universe) yields the degenerate single candidate
// with probability 0.0.
func (a *Adapter) PredictDistribution(text string) (model.Candidates, []string) {
	if a.synthetic {
		return a.degenerate(), a.labels
	}

	for _, c := range a.chain {
		probs, err := c.Predict(text)
		if err != nil {
			a.logger.Debug("classifier capability failed",
				"capability", c.Name,
				"error", err)
			continue
		}
		if len(probs) != len(a.labels) {
			a.logger.Warn("classifier capability returned mismatched vector",
				"capability", c.Name,
				"got", len(probs),
				"want", len(a.labels))
			continue
		}

		candidates := make(model.Candidates, len(probs))
		for i, p := range probs {
			candidates[i] = model.Candidate{CategoryID: a.labels[i], Probability: p}
		}
		return candidates, a.labels
	}

	a.logger.Warn("all classifier capabilities failed, returning degenerate result")
	return a.degenerate(), a.labels
}

func (a *Adapter) degenerate() model.Candidates {
	label := UnknownLabel
	if len(a.labels) > 0 {
		label = a.labels[0]
	}
	return model.Candidates{{CategoryID: label, Probability: 0.0}}
}

func syntheticLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}
