package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suriya2318/AI-FinCatTransaction/internal/common"
)

func testVectorizer() *Vectorizer {
	return &Vectorizer{
		Analyzer: AnalyzerCharWB,
		NgramMin: 1,
		NgramMax: 2,
		Vocabulary: map[string]int{
			" s": 0, "sh": 1, "he": 2, "el": 3, "ll": 4, "l ": 5,
			" c": 6, "ca": 7, "af": 8, "fe": 9, "e ": 10, "s": 11,
		},
		IDF: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
}

func testEstimator(classes []string) *Estimator {
	coef := make([][]float64, 2)
	for i := range coef {
		coef[i] = make([]float64, 12)
	}
	// "sh"/"ll" n-grams vote fuel, "ca"/"fe" vote dining.
	coef[0][7], coef[0][9] = 2.0, 2.0
	coef[1][1], coef[1][4] = 2.0, 2.0
	return &Estimator{
		Kind:      KindLogisticRegression,
		Classes:   classes,
		Coef:      coef,
		Intercept: []float64{0, 0},
	}
}

func TestArtifact_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	artifact := &Artifact{
		Format:     ArtifactFormat,
		Classes:    []string{"dining", "fuel"},
		Vectorizer: testVectorizer(),
		Estimator:  testEstimator(nil),
	}
	require.NoError(t, artifact.Save(path))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dining", "fuel"}, loaded.resolveLabels())

	adapter, err := NewAdapter(path, testLogger())
	require.NoError(t, err)
	assert.False(t, adapter.Synthetic())

	candidates, labels := adapter.PredictDistribution("shell")
	require.Len(t, candidates, 2)
	assert.Equal(t, []string{"dining", "fuel"}, labels)
	assert.Greater(t, candidates[1].Probability, candidates[0].Probability, "shell should score as fuel")
}

func TestArtifact_LabelRecoveryFromNestedPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	// No top-level classes: they live on the final estimator step.
	artifact := &Artifact{
		Format: ArtifactFormat,
		Pipeline: &Pipeline{
			Steps: []PipelineStep{
				{Name: "tfidfvectorizer", Vectorizer: testVectorizer()},
				{Name: "multinomialnb", Estimator: func() *Estimator {
					e := testEstimator([]string{"dining", "fuel"})
					e.Kind = KindMultinomialNB
					return e
				}()},
			},
		},
	}
	require.NoError(t, artifact.Save(path))

	adapter, err := NewAdapter(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"dining", "fuel"}, adapter.Labels())
	assert.False(t, adapter.Synthetic())

	candidates, _ := adapter.PredictDistribution("cafe")
	require.Len(t, candidates, 2)
	assert.Greater(t, candidates[0].Probability, candidates[1].Probability, "cafe should score as dining")
}

func TestArtifact_SyntheticLabelsAreDegenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	// No label universe anywhere: positional labels, degenerate output.
	artifact := &Artifact{
		Format:     ArtifactFormat,
		Vectorizer: testVectorizer(),
		Estimator:  testEstimator(nil),
	}
	require.NoError(t, artifact.Save(path))

	adapter, err := NewAdapter(path, testLogger())
	require.NoError(t, err)
	assert.True(t, adapter.Synthetic())
	assert.Equal(t, []string{"0", "1"}, adapter.Labels())

	candidates, _ := adapter.PredictDistribution("shell")
	require.Len(t, candidates, 1)
	assert.Equal(t, 0.0, candidates[0].Probability)
}

func TestLoadArtifact_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, common.ErrArtifactNotFound)
	})

	t.Run("not json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
		_, err := LoadArtifact(path)
		assert.ErrorIs(t, err, common.ErrInvalidArtifact)
	})

	t.Run("no estimator", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		artifact := &Artifact{Format: ArtifactFormat, Vectorizer: testVectorizer()}
		data := `{"format":"fincat/model.v1","vectorizer":` + mustJSON(t, artifact.Vectorizer) + `}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
		_, err := LoadArtifact(path)
		assert.ErrorIs(t, err, common.ErrInvalidArtifact)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		est := testEstimator(nil)
		est.Coef[0] = est.Coef[0][:3]
		artifact := &Artifact{Format: ArtifactFormat, Vectorizer: testVectorizer(), Estimator: est}
		require.NoError(t, artifact.Save(path))
		_, err := LoadArtifact(path)
		assert.ErrorIs(t, err, common.ErrInvalidArtifact)
	})
}

func TestVectorizer_Transform(t *testing.T) {
	v := testVectorizer()

	t.Run("l2 normalized", func(t *testing.T) {
		vec := v.Transform("shell")
		require.NotEmpty(t, vec)
		var sumSq float64
		for _, w := range vec {
			sumSq += w * w
		}
		assert.InDelta(t, 1.0, sumSq, 1e-9)
	})

	t.Run("empty text yields empty vector", func(t *testing.T) {
		assert.Empty(t, v.Transform(""))
	})

	t.Run("out of vocabulary yields empty vector", func(t *testing.T) {
		assert.Empty(t, v.Transform("zzz"))
	})
}

func TestVectorizer_Ngrams(t *testing.T) {
	v := &Vectorizer{Analyzer: AnalyzerCharWB, NgramMin: 2, NgramMax: 2}

	grams := v.Ngrams("ab cd")
	assert.Equal(t, []string{" a", "ab", "b ", " c", "cd", "d "}, grams)
}
