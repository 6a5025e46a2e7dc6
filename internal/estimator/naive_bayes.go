package estimator

import (
	"errors"
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"
)

// NaiveBayesParams is the exported state of a two-class multinomial naive
// Bayes model. Row 1 is the positive class.
type NaiveBayesParams struct {
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// NaiveBayes is a two-class multinomial naive Bayes model. Read-only and
// safe for concurrent use.
type NaiveBayes struct {
	prior   [2]float64
	logProb [2][]float64
}

func NewNaiveBayes(p NaiveBayesParams) (*NaiveBayes, error) {
	if len(p.ClassLogPrior) != 2 || len(p.FeatureLogProb) != 2 {
		return nil, errors.New("naive bayes: expected exactly two classes")
	}
	if len(p.FeatureLogProb[0]) == 0 || len(p.FeatureLogProb[0]) != len(p.FeatureLogProb[1]) {
		return nil, fmt.Errorf("naive bayes: feature_log_prob rows have %d and %d features",
			len(p.FeatureLogProb[0]), len(p.FeatureLogProb[1]))
	}
	return &NaiveBayes{
		prior:   [2]float64{p.ClassLogPrior[0], p.ClassLogPrior[1]},
		logProb: [2][]float64{p.FeatureLogProb[0], p.FeatureLogProb[1]},
	}, nil
}

// LoadNaiveBayes reads a JSON NaiveBayesParams artifact.
func LoadNaiveBayes(path string) (*NaiveBayes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p NaiveBayesParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode naive bayes model %s: %w", path, err)
	}
	return NewNaiveBayes(p)
}

func (m *NaiveBayes) Dim() int { return len(m.logProb[0]) }

// PredictProba returns the posterior of class 1 from the joint
// log-likelihoods, normalized with log-sum-exp.
func (m *NaiveBayes) PredictProba(x Vector) (float64, error) {
	var jll [2]float64
	for c := range jll {
		dot, err := x.Dot(m.logProb[c])
		if err != nil {
			return 0, err
		}
		jll[c] = m.prior[c] + dot
	}
	hi := math.Max(jll[0], jll[1])
	lse := hi + math.Log(math.Exp(jll[0]-hi)+math.Exp(jll[1]-hi))
	return math.Exp(jll[1] - lse), nil
}
