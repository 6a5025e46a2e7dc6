package estimator

import (
	"errors"
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"
)

// LinearParams is the exported state of a binary logistic model.
type LinearParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Linear is a binary logistic regression. Read-only and safe for
// concurrent use.
type Linear struct {
	coef      []float64
	intercept float64
}

func NewLinear(p LinearParams) (*Linear, error) {
	if len(p.Coef) == 0 {
		return nil, errors.New("linear: empty coef")
	}
	return &Linear{coef: p.Coef, intercept: p.Intercept}, nil
}

// LoadLinear reads a JSON LinearParams artifact.
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p LinearParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode linear model %s: %w", path, err)
	}
	return NewLinear(p)
}

func (m *Linear) Dim() int { return len(m.coef) }

func (m *Linear) PredictProba(x Vector) (float64, error) {
	z, err := x.Dot(m.coef)
	if err != nil {
		return 0, err
	}
	return sigmoid(z + m.intercept), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
