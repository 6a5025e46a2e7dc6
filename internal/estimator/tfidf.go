package estimator

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/straja-ai/rakshak/internal/textnorm"
)

// Norms supported by TFIDF.
const (
	NormL2   = "l2"
	NormL1   = "l1"
	NormNone = "none"
)

// TFIDFParams is the exported state of a fitted TF-IDF vectorizer.
type TFIDFParams struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramRange  [2]int         `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
	Lowercase   *bool          `json:"lowercase,omitempty"`
	Norm        string         `json:"norm,omitempty"`
}

// TFIDF reproduces inference of a fitted word-level TF-IDF vectorizer:
// tokens are runs of two or more word characters, n-grams are joined with a
// single space, term counts are optionally damped to 1+ln(tf), weighted by
// idf and normalized. It is read-only after construction and safe for
// concurrent use.
type TFIDF struct {
	vocab     map[string]int
	idf       []float64
	ngramMin  int
	ngramMax  int
	sublinear bool
	lowercase bool
	norm      string
}

// NewTFIDF validates p and builds a vectorizer from it.
func NewTFIDF(p TFIDFParams) (*TFIDF, error) {
	if len(p.IDF) == 0 {
		return nil, errors.New("tfidf: empty idf")
	}
	if len(p.Vocabulary) != len(p.IDF) {
		return nil, fmt.Errorf("tfidf: vocabulary has %d terms, idf %d", len(p.Vocabulary), len(p.IDF))
	}
	seen := make([]bool, len(p.IDF))
	for term, idx := range p.Vocabulary {
		if idx < 0 || idx >= len(p.IDF) {
			return nil, fmt.Errorf("tfidf: term %q has index %d outside [0,%d)", term, idx, len(p.IDF))
		}
		if seen[idx] {
			return nil, fmt.Errorf("tfidf: index %d assigned twice", idx)
		}
		seen[idx] = true
	}

	lo, hi := p.NgramRange[0], p.NgramRange[1]
	if lo == 0 && hi == 0 {
		lo, hi = 1, 1
	}
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("tfidf: invalid ngram_range [%d,%d]", lo, hi)
	}

	norm := strings.ToLower(strings.TrimSpace(p.Norm))
	switch norm {
	case "":
		norm = NormL2
	case NormL2, NormL1, NormNone:
	default:
		return nil, fmt.Errorf("tfidf: unsupported norm %q", p.Norm)
	}

	lowercase := true
	if p.Lowercase != nil {
		lowercase = *p.Lowercase
	}

	return &TFIDF{
		vocab:     p.Vocabulary,
		idf:       p.IDF,
		ngramMin:  lo,
		ngramMax:  hi,
		sublinear: p.SublinearTF,
		lowercase: lowercase,
		norm:      norm,
	}, nil
}

// LoadTFIDF reads a JSON TFIDFParams artifact.
func LoadTFIDF(path string) (*TFIDF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p TFIDFParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode tfidf %s: %w", path, err)
	}
	return NewTFIDF(p)
}

func (t *TFIDF) Dim() int { return len(t.idf) }

// Transform maps text to its TF-IDF vector. Out-of-vocabulary n-grams are
// ignored, so an empty or unknown text yields the zero vector.
func (t *TFIDF) Transform(text string) (Vector, error) {
	if t.lowercase {
		text = strings.ToLower(text)
	}
	tokens := Tokenize(text)

	counts := make(map[int]float64)
	for n := t.ngramMin; n <= t.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := t.vocab[term]; ok {
				counts[idx]++
			}
		}
	}

	for idx, tf := range counts {
		if t.sublinear {
			tf = 1 + math.Log(tf)
		}
		counts[idx] = tf * t.idf[idx]
	}
	t.normalize(counts)

	return Sparse(len(t.idf), counts)
}

func (t *TFIDF) normalize(weights map[int]float64) {
	var total float64
	switch t.norm {
	case NormL2:
		for _, w := range weights {
			total += w * w
		}
		total = math.Sqrt(total)
	case NormL1:
		for _, w := range weights {
			total += math.Abs(w)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for idx, w := range weights {
		weights[idx] = w / total
	}
}

// Tokenize splits text into runs of at least two word characters.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool { return !textnorm.IsWordRune(r) })
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= 2 {
			out = append(out, w)
		}
	}
	return out
}
