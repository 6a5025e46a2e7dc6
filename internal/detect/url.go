package detect

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/intel"
	"github.com/straja-ai/rakshak/internal/logging"
	"github.com/straja-ai/rakshak/internal/safety"
	"github.com/straja-ai/rakshak/internal/urlfeat"
)

// Blend weights of the URL scorer when an estimator is loaded.
const (
	urlRuleWeight  = 0.4
	urlModelWeight = 0.6
)

// URLSafeExplanation is reported when no URL rule fired.
const URLSafeExplanation = "URL appears to be safe"

type urlRule struct {
	feature     string
	weight      float64
	key         string
	explanation string
}

// urlRules fire when their feature is suspicious. The weights sum to 1.
var urlRules = []urlRule{
	{urlfeat.UsingIP, 0.20, "uses_ip", "URL uses an IP address instead of domain name"},
	{urlfeat.LongURL, 0.10, "long_url", "URL is suspiciously long"},
	{urlfeat.ShortURL, 0.15, "short_url", "URL uses a URL shortening service"},
	{urlfeat.SymbolAt, 0.15, "has_at_symbol", "URL contains @ symbol (potential redirect)"},
	{urlfeat.Redirecting, 0.10, "has_redirect", "URL contains multiple redirects"},
	{urlfeat.PrefixSuffix, 0.10, "has_hyphen", "Domain uses prefix/suffix with hyphens"},
	{urlfeat.SubDomains, 0.10, "excessive_subdomains", "URL has excessive subdomains"},
	{urlfeat.HTTPS, 0.10, "no_https", "URL does not use HTTPS encryption"},
}

// URLOutcome is the result of scanning a URL.
type URLOutcome struct {
	IsPhishing       bool            `json:"is_phishing"`
	RiskScore        float64         `json:"risk_score"`
	RiskLevel        safety.Tier     `json:"risk_level"`
	FeaturesDetected map[string]bool `json:"features_detected"`
	Explanations     []string        `json:"explanations"`
	Timestamp        time.Time       `json:"timestamp"`
}

// ScanURL scores url from its lexical features, blended with the URL
// estimator when one is loaded. An estimator failure is logged and the
// rule score stands alone; malformed URLs are scored, not rejected.
func (s *Service) ScanURL(ctx context.Context, url string) (out *URLOutcome, err error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, KindURL)
	var rec *ScanRecord
	defer func() { endSpan(span, rec, err) }()

	if strings.TrimSpace(url) == "" {
		return nil, invalid(DetailEmptyURL)
	}

	features := urlfeat.Extract(url)

	score := 0.0
	detected := make(map[string]bool, len(urlRules))
	var explanations []string
	for _, r := range urlRules {
		fired := features.Suspicious(r.feature)
		detected[r.key] = fired
		if fired {
			score += r.weight
			explanations = append(explanations, r.explanation)
		}
	}

	var failed []string
	set := s.registry.Current()
	if est, ok := set.Estimator(estimator.RoleURLRF); ok {
		cols := set.URLColumns()
		if len(cols) == 0 {
			cols = urlfeat.Schema
		}
		p, perr := predict(estimator.RoleURLRF, est, estimator.DenseFloat32(features.Align(cols)))
		if perr != nil {
			s.logger.Warn("url estimator failed, using rule score", errorFields(perr)...)
			failed = append(failed, estimator.RoleURLRF)
		} else {
			score = urlRuleWeight*score + urlModelWeight*p
		}
	}

	score = clamp01(score)
	isPhishing := safety.Flagged(score)
	tier := safety.TierFor(score)
	if len(explanations) == 0 {
		explanations = []string{URLSafeExplanation}
	}

	out = &URLOutcome{
		IsPhishing:       isPhishing,
		RiskScore:        round4(score),
		RiskLevel:        tier,
		FeaturesDetected: detected,
		Explanations:     explanations,
		Timestamp:        start,
	}
	rec = &ScanRecord{
		Timestamp:        start,
		Kind:             KindURL,
		Result:           ResultSafe,
		Tier:             tier,
		Score:            score,
		Input:            url,
		FailedEstimators: failed,
	}
	if isPhishing {
		rec.Result = ResultPhishing
		rec.Category = intel.PhishingLink.String()
	}
	rec.Duration = s.now().Sub(start)
	s.record(ctx, *rec)
	return out, nil
}

func errorFields(err error) []logging.Field {
	fields := []logging.Field{logging.Error(err)}
	var ee *EstimatorError
	if errors.As(err, &ee) {
		fields = append(fields, logging.String("role", ee.Role))
	}
	return fields
}
