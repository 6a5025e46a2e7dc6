// Package estimator loads the trained scoring artifacts and exposes them
// behind two small capabilities: a Vectorizer that turns normalized text
// into features, and an Estimator that turns features into the probability
// of the positive (scam) class.
package estimator

import (
	"errors"
	"fmt"
	"sort"
)

// Estimator returns the probability of the positive class for x.
//
// Implementations document their own concurrency guarantees. Every
// implementation in this package is safe for concurrent use.
type Estimator interface {
	PredictProba(x Vector) (float64, error)
}

// Vectorizer turns normalized text into the feature space of the estimators
// paired with it.
type Vectorizer interface {
	Transform(text string) (Vector, error)
	Dim() int
}

// Func adapts a plain function to Estimator.
type Func func(x Vector) (float64, error)

func (f Func) PredictProba(x Vector) (float64, error) { return f(x) }

// Constant returns an Estimator that always answers p.
func Constant(p float64) Estimator {
	return Func(func(Vector) (float64, error) { return p, nil })
}

// ErrDimension is returned when a vector does not fit an estimator's input.
var ErrDimension = errors.New("estimator: feature dimension mismatch")

// Vector is a feature vector of length Dim. Only the entries at Indices are
// non-zero; Indices are strictly increasing.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// Dense builds a vector holding every value of values.
func Dense(values []float64) Vector {
	v := Vector{Dim: len(values), Indices: make([]int, 0, len(values)), Values: make([]float64, 0, len(values))}
	for i, val := range values {
		if val != 0 {
			v.Indices = append(v.Indices, i)
			v.Values = append(v.Values, val)
		}
	}
	return v
}

// DenseFloat32 is Dense for float32 input.
func DenseFloat32(values []float32) Vector {
	f := make([]float64, len(values))
	for i, val := range values {
		f[i] = float64(val)
	}
	return Dense(f)
}

// Sparse builds a vector from an index to value map.
func Sparse(dim int, entries map[int]float64) (Vector, error) {
	v := Vector{Dim: dim, Indices: make([]int, 0, len(entries)), Values: make([]float64, 0, len(entries))}
	for idx := range entries {
		if idx < 0 || idx >= dim {
			return Vector{}, fmt.Errorf("%w: index %d outside [0,%d)", ErrDimension, idx, dim)
		}
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, entries[idx])
	}
	return v, nil
}

// NNZ is the number of stored entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// ToFloat32 expands v into a dense slice, writing into dst when it is large
// enough.
func (v Vector) ToFloat32(dst []float32) []float32 {
	if cap(dst) < v.Dim {
		dst = make([]float32, v.Dim)
	}
	dst = dst[:v.Dim]
	clear(dst)
	for k, idx := range v.Indices {
		dst[idx] = float32(v.Values[k])
	}
	return dst
}

// Dot returns the inner product of v with the dense weights w.
func (v Vector) Dot(w []float64) (float64, error) {
	if v.Dim != len(w) {
		return 0, fmt.Errorf("%w: vector has %d features, weights %d", ErrDimension, v.Dim, len(w))
	}
	var sum float64
	for k, idx := range v.Indices {
		sum += v.Values[k] * w[idx]
	}
	return sum, nil
}
