// Package trainer fits the baseline text categorization model: a
// char_wb TF-IDF featurizer feeding a multinomial naive Bayes
// classifier, serialized as the JSON artifact the classifier adapter
// loads.
package trainer

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/suriya2318/AI-FinCatTransaction/internal/classifier"
	"github.com/suriya2318/AI-FinCatTransaction/internal/common"
	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

// Options configures a training run. Zero values select the defaults
// of the baseline model.
type Options struct {
	Progress        func(done, total int)
	NgramMin        int     // default 1
	NgramMax        int     // default 2
	MaxFeatures     int     // default 5000
	Alpha           float64 // NB smoothing, default 1.0
	HoldoutFraction float64 // default 0.2
	Seed            int64   // default 42
}

func (o *Options) applyDefaults() {
	if o.NgramMin == 0 {
		o.NgramMin = 1
	}
	if o.NgramMax == 0 {
		o.NgramMax = 2
	}
	if o.MaxFeatures == 0 {
		o.MaxFeatures = 5000
	}
	if o.Alpha == 0 {
		o.Alpha = 1.0
	}
	if o.HoldoutFraction == 0 {
		o.HoldoutFraction = 0.2
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
}

// Report summarizes a training run.
type Report struct {
	ClassCounts map[string]int
	Examples    int
	Classes     int
	Holdout     int
	Accuracy    float64
}

// Train fits the baseline model on already-normalized training rows.
// The split is deterministic for a given seed, so retraining on the
// same corpus reproduces the same artifact.
func Train(rows []model.TrainingRow, opts Options) (*classifier.Artifact, *Report, error) {
	opts.applyDefaults()

	if len(rows) == 0 {
		return nil, nil, common.ErrNoTrainingData
	}

	classCounts := make(map[string]int)
	for _, r := range rows {
		if r.Text == "" || r.Label == "" {
			continue
		}
		classCounts[r.Label]++
	}
	if len(classCounts) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 classes, got %d",
			common.ErrNoTrainingData, len(classCounts))
	}

	clean := make([]model.TrainingRow, 0, len(rows))
	for _, r := range rows {
		if r.Text != "" && r.Label != "" {
			clean = append(clean, r)
		}
	}

	train, holdout := split(clean, opts)

	vec := fitVectorizer(train, opts)
	est := fitNaiveBayes(train, vec, opts)

	report := &Report{
		Examples:    len(clean),
		Classes:     len(est.Classes),
		Holdout:     len(holdout),
		ClassCounts: classCounts,
	}
	if len(holdout) > 0 {
		report.Accuracy = evaluate(holdout, vec, est)
	}

	artifact := &classifier.Artifact{
		Format:     classifier.ArtifactFormat,
		Classes:    est.Classes,
		Vectorizer: vec,
		Estimator:  est,
	}
	return artifact, report, nil
}

// split shuffles deterministically and carves off the holdout tail.
// Tiny corpora skip the holdout rather than starving training.
func split(rows []model.TrainingRow, opts Options) (train, holdout []model.TrainingRow) {
	shuffled := make([]model.TrainingRow, len(rows))
	copy(shuffled, rows)

	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := int(float64(len(shuffled)) * opts.HoldoutFraction)
	if n == 0 || len(shuffled)-n < 2 {
		return shuffled, nil
	}
	return shuffled[:len(shuffled)-n], shuffled[len(shuffled)-n:]
}

// fitVectorizer builds the vocabulary from training document
// frequencies, capped at MaxFeatures, with smoothed IDF weights.
func fitVectorizer(rows []model.TrainingRow, opts Options) *classifier.Vectorizer {
	probe := &classifier.Vectorizer{
		Analyzer: classifier.AnalyzerCharWB,
		NgramMin: opts.NgramMin,
		NgramMax: opts.NgramMax,
	}

	df := make(map[string]int)
	for _, r := range rows {
		seen := make(map[string]struct{})
		for _, gram := range probe.Ngrams(r.Text) {
			if _, ok := seen[gram]; ok {
				continue
			}
			seen[gram] = struct{}{}
			df[gram]++
		}
	}

	grams := make([]string, 0, len(df))
	for gram := range df {
		grams = append(grams, gram)
	}
	// Highest document frequency first; lexicographic tie-break keeps
	// the vocabulary deterministic across runs.
	sort.Slice(grams, func(i, j int) bool {
		if df[grams[i]] != df[grams[j]] {
			return df[grams[i]] > df[grams[j]]
		}
		return grams[i] < grams[j]
	})
	if len(grams) > opts.MaxFeatures {
		grams = grams[:opts.MaxFeatures]
	}
	sort.Strings(grams)

	vocabulary := make(map[string]int, len(grams))
	idf := make([]float64, len(grams))
	nDocs := float64(len(rows))
	for i, gram := range grams {
		vocabulary[gram] = i
		idf[i] = math.Log((1+nDocs)/(1+float64(df[gram]))) + 1
	}

	return &classifier.Vectorizer{
		Analyzer:   classifier.AnalyzerCharWB,
		NgramMin:   opts.NgramMin,
		NgramMax:   opts.NgramMax,
		Vocabulary: vocabulary,
		IDF:        idf,
	}
}

// fitNaiveBayes computes the multinomial NB log-likelihood weights and
// log-prior intercepts over TF-IDF features.
func fitNaiveBayes(rows []model.TrainingRow, vec *classifier.Vectorizer, opts Options) *classifier.Estimator {
	labels := make(map[string]struct{})
	for _, r := range rows {
		labels[r.Label] = struct{}{}
	}
	classes := make([]string, 0, len(labels))
	for label := range labels {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	nFeatures := vec.NumFeatures()
	featureSums := make([][]float64, len(classes))
	for i := range featureSums {
		featureSums[i] = make([]float64, nFeatures)
	}
	classTotals := make([]float64, len(classes))
	classDocs := make([]float64, len(classes))

	for i, r := range rows {
		c := classIdx[r.Label]
		classDocs[c]++
		for idx, w := range vec.Transform(r.Text) {
			featureSums[c][idx] += w
			classTotals[c] += w
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(rows))
		}
	}

	coef := make([][]float64, len(classes))
	intercept := make([]float64, len(classes))
	for c := range classes {
		coef[c] = make([]float64, nFeatures)
		denom := math.Log(classTotals[c] + opts.Alpha*float64(nFeatures))
		for f := 0; f < nFeatures; f++ {
			coef[c][f] = math.Log(featureSums[c][f]+opts.Alpha) - denom
		}
		intercept[c] = math.Log(classDocs[c] / float64(len(rows)))
	}

	return &classifier.Estimator{
		Kind:      classifier.KindMultinomialNB,
		Classes:   classes,
		Coef:      coef,
		Intercept: intercept,
	}
}

// evaluate scores the holdout split by argmax over NB scores.
func evaluate(rows []model.TrainingRow, vec *classifier.Vectorizer, est *classifier.Estimator) float64 {
	var correct int
	for _, r := range rows {
		features := vec.Transform(r.Text)
		best, bestScore := -1, math.Inf(-1)
		for c := range est.Coef {
			score := est.Intercept[c]
			for idx, w := range features {
				score += est.Coef[c][idx] * w
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		if best >= 0 && est.Classes[best] == r.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}
