package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suriya2318/AI-FinCatTransaction/internal/common"
)

// Estimator kinds understood by the artifact format.
const (
	KindLogisticRegression = "logistic_regression"
	KindMultinomialNB      = "multinomial_nb"
)

// ArtifactFormat identifies the JSON model document this package reads
// and writes.
const ArtifactFormat = "fincat/model.v1"

// Artifact is the serialized trained model. Flat documents carry the
// vectorizer and estimator at the top level; pipeline documents nest
// them in named steps, mirroring how externally trained models arrive.
type Artifact struct {
	Vectorizer *Vectorizer `json:"vectorizer,omitempty"`
	Estimator  *Estimator  `json:"estimator,omitempty"`
	Pipeline   *Pipeline   `json:"pipeline,omitempty"`
	Format     string      `json:"format"`
	Classes    []string    `json:"classes,omitempty"`
}

// Pipeline is a nested sequence of named steps.
type Pipeline struct {
	Steps []PipelineStep `json:"steps"`
}

// PipelineStep holds at most one component of a pipeline.
type PipelineStep struct {
	Vectorizer *Vectorizer `json:"vectorizer,omitempty"`
	Estimator  *Estimator  `json:"estimator,omitempty"`
	Name       string      `json:"name"`
}

// Estimator is a linear classifier over vectorizer features: one row of
// coefficients and one intercept per class.
type Estimator struct {
	Kind      string      `json:"kind"`
	Classes   []string    `json:"classes,omitempty"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// Validate checks the estimator's dimensional consistency against the
// vectorizer it will consume features from.
func (e *Estimator) Validate(numFeatures int) error {
	if len(e.Coef) == 0 {
		return fmt.Errorf("estimator has no coefficient rows")
	}
	if len(e.Intercept) != len(e.Coef) {
		return fmt.Errorf("intercept length %d does not match %d classes",
			len(e.Intercept), len(e.Coef))
	}
	for i, row := range e.Coef {
		if len(row) != numFeatures {
			return fmt.Errorf("coefficient row %d has %d features, want %d",
				i, len(row), numFeatures)
		}
	}
	if len(e.Classes) > 0 && len(e.Classes) != len(e.Coef) {
		return fmt.Errorf("%d class labels for %d coefficient rows",
			len(e.Classes), len(e.Coef))
	}
	return nil
}

// LoadArtifact reads and validates a model artifact from path. Missing
// or undeserializable artifacts are errors; the caller must not start
// serving without one.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidArtifact, err)
	}

	vec, est, err := artifact.components()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidArtifact, err)
	}
	if err := vec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidArtifact, err)
	}
	if err := est.Validate(vec.NumFeatures()); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidArtifact, err)
	}

	return &artifact, nil
}

// Save writes the artifact atomically: a temp file in the target
// directory is renamed into place so a concurrent reader never sees a
// half-written model.
func (a *Artifact) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace model artifact: %w", err)
	}

	return nil
}

// components resolves the vectorizer and estimator regardless of
// whether the document is flat or a nested pipeline.
func (a *Artifact) components() (*Vectorizer, *Estimator, error) {
	vec := a.Vectorizer
	est := a.Estimator

	if a.Pipeline != nil {
		for _, step := range a.Pipeline.Steps {
			if step.Vectorizer != nil && vec == nil {
				vec = step.Vectorizer
			}
			if step.Estimator != nil {
				// The final estimator step wins.
				est = step.Estimator
			}
		}
	}

	if vec == nil {
		return nil, nil, fmt.Errorf("artifact has no vectorizer")
	}
	if est == nil {
		return nil, nil, fmt.Errorf("artifact has no estimator")
	}
	return vec, est, nil
}

// resolveLabels recovers the ordered label universe: a top-level
// classes field wins, then the classes of the (possibly nested) final
// estimator. A nil return means no labels could be recovered.
func (a *Artifact) resolveLabels() []string {
	if len(a.Classes) > 0 {
		return a.Classes
	}
	if _, est, err := a.components(); err == nil && len(est.Classes) > 0 {
		return est.Classes
	}
	return nil
}
