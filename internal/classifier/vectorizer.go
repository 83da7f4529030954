package classifier

import (
	"fmt"
	"math"
	"strings"
)

// AnalyzerCharWB extracts character n-grams from word-boundary-padded
// tokens. It is the only analyzer the artifact format currently knows.
const AnalyzerCharWB = "char_wb"

// Vectorizer maps normalized text to a sparse TF-IDF feature vector
// using the vocabulary and inverse document frequencies fixed at
// training time.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Analyzer   string         `json:"analyzer"`
	IDF        []float64      `json:"idf"`
	NgramMin   int            `json:"ngram_min"`
	NgramMax   int            `json:"ngram_max"`
}

// Validate checks internal consistency of a deserialized vectorizer.
func (v *Vectorizer) Validate() error {
	if v.Analyzer != AnalyzerCharWB {
		return fmt.Errorf("unsupported analyzer %q", v.Analyzer)
	}
	if v.NgramMin < 1 || v.NgramMax < v.NgramMin {
		return fmt.Errorf("invalid ngram range (%d, %d)", v.NgramMin, v.NgramMax)
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("idf length %d does not match vocabulary size %d",
			len(v.IDF), len(v.Vocabulary))
	}
	for gram, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("vocabulary entry %q has out-of-range index %d", gram, idx)
		}
	}
	return nil
}

// NumFeatures returns the dimensionality of produced vectors.
func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}

// Transform produces the sparse L2-normalized TF-IDF vector for text.
// Unknown n-grams are dropped; an empty or fully out-of-vocabulary
// text yields an empty vector.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	vec := make(map[int]float64)
	for _, gram := range v.Ngrams(text) {
		if idx, ok := v.Vocabulary[gram]; ok {
			vec[idx] += v.IDF[idx]
		}
	}

	var sumSq float64
	for _, w := range vec {
		sumSq += w * w
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for idx := range vec {
			vec[idx] /= norm
		}
	}

	return vec
}

// Ngrams extracts the char_wb n-grams of text: each whitespace token is
// padded with a space on both sides and character windows of every size
// in the configured range are emitted in order.
func (v *Vectorizer) Ngrams(text string) []string {
	var grams []string
	for _, token := range strings.Fields(text) {
		padded := []rune(" " + token + " ")
		for n := v.NgramMin; n <= v.NgramMax; n++ {
			if n > len(padded) {
				break
			}
			for i := 0; i+n <= len(padded); i++ {
				grams = append(grams, string(padded[i:i+n]))
			}
		}
	}
	return grams
}
