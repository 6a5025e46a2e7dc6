package detect

import (
	"context"
	"strings"
	"time"

	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/intel"
	"github.com/straja-ai/rakshak/internal/safety"
	"github.com/straja-ai/rakshak/internal/textnorm"
)

// Ensemble weights of the message scorer. They sum to 1.
const (
	weightLR = 0.4
	weightNB = 0.3
	weightRF = 0.3
)

// ModelConfidence is the per-estimator breakdown of a message score.
type ModelConfidence struct {
	LogisticRegression float64 `json:"logistic_regression"`
	NaiveBayes         float64 `json:"naive_bayes"`
	RandomForest       float64 `json:"random_forest"`
	Ensemble           float64 `json:"ensemble"`
}

// MessageOutcome is the result of scoring a text message.
type MessageOutcome struct {
	IsScam          bool            `json:"is_scam"`
	ScamProbability float64         `json:"scam_probability"`
	RiskLevel       safety.Tier     `json:"risk_level"`
	Category        string          `json:"category"`
	MatchedPatterns []string        `json:"matched_patterns,omitempty"`
	Explanations    []string        `json:"explanations"`
	ModelConfidence ModelConfidence `json:"model_confidence"`
	Timestamp       time.Time       `json:"timestamp"`
}

var textEnsemble = []string{estimator.RoleTextLR, estimator.RoleTextNB, estimator.RoleTextRF}

// DetectMessage scores message with the weighted text ensemble. All three
// text estimators must be loaded; a failure of any of them fails the scan
// with ErrServiceUnavailable since there is no rule-based fallback.
func (s *Service) DetectMessage(ctx context.Context, message string) (out *MessageOutcome, err error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, KindMessage)
	var rec *ScanRecord
	defer func() { endSpan(span, rec, err) }()

	if strings.TrimSpace(message) == "" {
		return nil, invalid(DetailEmptyMessage)
	}

	set := s.registry.Current()
	var vec estimator.Vectorizer
	ests := make([]estimator.Estimator, len(textEnsemble))
	for i, role := range textEnsemble {
		v, e, ok := set.Pipeline(role)
		if !ok {
			return nil, unavailable(DetailTextNotLoaded, nil)
		}
		vec, ests[i] = v, e
	}

	x, err := vec.Transform(textnorm.Normalize(message))
	if err != nil {
		err = &EstimatorError{Role: estimator.VectorizerText, Err: err}
		s.logger.Error(DetailTextModelError, errorFields(err)...)
		return nil, unavailable(DetailTextModelError, err)
	}

	probs := make([]float64, len(ests))
	for i, e := range ests {
		probs[i], err = predict(textEnsemble[i], e, x)
		if err != nil {
			s.logger.Error(DetailTextModelError, errorFields(err)...)
			return nil, unavailable(DetailTextModelError, err)
		}
	}

	combined := clamp01(weightLR*probs[0] + weightNB*probs[1] + weightRF*probs[2])
	isScam := safety.Flagged(combined)
	tier := safety.TierFor(combined)

	cat, evidence := s.bank.Classify(message)
	explanations := intel.Explain(message, combined, cat)
	if len(explanations) == 0 {
		explanations = []string{intel.NoSuspiciousPatterns}
	}

	out = &MessageOutcome{
		IsScam:          isScam,
		ScamProbability: round4(combined),
		RiskLevel:       tier,
		Category:        intel.SafeLabel,
		Explanations:    explanations,
		ModelConfidence: ModelConfidence{
			LogisticRegression: round4(probs[0]),
			NaiveBayes:         round4(probs[1]),
			RandomForest:       round4(probs[2]),
			Ensemble:           round4(combined),
		},
		Timestamp: start,
	}
	rec = &ScanRecord{
		Timestamp: start,
		Kind:      KindMessage,
		Result:    ResultSafe,
		Tier:      tier,
		Score:     combined,
		Input:     message,
	}
	if isScam {
		out.Category = cat.String()
		out.MatchedPatterns = evidence
		rec.Result = ResultScam
		rec.Category = cat.String()
	}
	rec.Duration = s.now().Sub(start)
	s.record(ctx, *rec)
	return out, nil
}
