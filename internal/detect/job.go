package detect

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/intel"
	"github.com/straja-ai/rakshak/internal/safety"
	"github.com/straja-ai/rakshak/internal/textnorm"
)

// MinJobTextRunes is the shortest accepted job posting, counted over the
// trimmed concatenation of all fields.
const MinJobTextRunes = 10

// missingProfileNudge is added to the fraud probability when the posting
// has no company profile.
const missingProfileNudge = 0.1

// Job explanation texts.
const (
	ExplainNoCompanyProfile = "No company profile provided"
	ExplainWorkFromHome     = "Contains work-from-home earning claims"
	ExplainNoExperience     = "Claims no experience needed"
	ExplainGuaranteed       = "Offers guaranteed income/position"
	ExplainApplyUrgency     = "Creates urgency to apply"
	ExplainNoRequirements   = "No specific requirements listed (suspicious)"
	ExplainPaymentRequest   = "Requests payment from applicant"
	ExplainJobFraudulent    = "Job posting matches patterns of known fraudulent listings"
	ExplainJobLegitimate    = "Job posting appears legitimate"
)

var (
	jobUrgencyWords = intel.NewKeywordSet("urgent", "immediately", "asap")
	jobPaymentWords = intel.NewKeywordSet("fee", "payment", "deposit", "registration fee")
)

// JobPosting is the text of a job listing.
type JobPosting struct {
	Title          string `json:"title"`
	CompanyProfile string `json:"company_profile"`
	Description    string `json:"description"`
	Requirements   string `json:"requirements"`
	Benefits       string `json:"benefits"`
}

// Text joins every field with single spaces.
func (j JobPosting) Text() string {
	return strings.Join([]string{j.Title, j.CompanyProfile, j.Description, j.Requirements, j.Benefits}, " ")
}

// JobOutcome is the result of scoring a job posting.
type JobOutcome struct {
	IsFake           bool        `json:"is_fake"`
	FraudProbability float64     `json:"fraud_probability"`
	RiskLevel        safety.Tier `json:"risk_level"`
	Explanations     []string    `json:"explanations"`
	Timestamp        time.Time   `json:"timestamp"`
}

// DetectJob scores a job posting with the job estimator and adds the
// posting's structural red flags as explanations. Only a missing company
// profile moves the probability; the verdict and tier are taken from the
// adjusted value.
func (s *Service) DetectJob(ctx context.Context, job JobPosting) (out *JobOutcome, err error) {
	start := s.now()
	ctx, span := s.startSpan(ctx, KindJob)
	var rec *ScanRecord
	defer func() { endSpan(span, rec, err) }()

	text := job.Text()
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinJobTextRunes {
		return nil, invalid(DetailJobTooShort)
	}

	vec, est, ok := s.registry.Current().Pipeline(estimator.RoleJob)
	if !ok {
		return nil, unavailable(DetailJobNotLoaded, nil)
	}

	x, err := vec.Transform(textnorm.Normalize(text))
	if err != nil {
		err = &EstimatorError{Role: estimator.VectorizerJob, Err: err}
		s.logger.Error(DetailJobModelError, errorFields(err)...)
		return nil, unavailable(DetailJobModelError, err)
	}
	p, err := predict(estimator.RoleJob, est, x)
	if err != nil {
		s.logger.Error(DetailJobModelError, errorFields(err)...)
		return nil, unavailable(DetailJobModelError, err)
	}

	lc := strings.ToLower(text)
	var explanations []string
	if strings.TrimSpace(job.CompanyProfile) == "" {
		explanations = append(explanations, ExplainNoCompanyProfile)
		p = math.Min(p+missingProfileNudge, 1)
	}
	if strings.Contains(lc, "work from home") && strings.Contains(lc, "earn") {
		explanations = append(explanations, ExplainWorkFromHome)
	}
	if strings.Contains(lc, "no experience") {
		explanations = append(explanations, ExplainNoExperience)
	}
	if strings.Contains(lc, "guaranteed") {
		explanations = append(explanations, ExplainGuaranteed)
	}
	if jobUrgencyWords.ContainsAny(lc) {
		explanations = append(explanations, ExplainApplyUrgency)
	}
	if strings.TrimSpace(job.Requirements) == "" {
		explanations = append(explanations, ExplainNoRequirements)
	}
	if jobPaymentWords.ContainsAny(lc) {
		explanations = append(explanations, ExplainPaymentRequest)
	}

	isFake := safety.Flagged(p)
	tier := safety.TierFor(p)
	if len(explanations) == 0 {
		if isFake {
			explanations = []string{ExplainJobFraudulent}
		} else {
			explanations = []string{ExplainJobLegitimate}
		}
	}

	out = &JobOutcome{
		IsFake:           isFake,
		FraudProbability: round4(p),
		RiskLevel:        tier,
		Explanations:     explanations,
		Timestamp:        start,
	}
	rec = &ScanRecord{
		Timestamp: start,
		Kind:      KindJob,
		Result:    ResultLegit,
		Tier:      tier,
		Score:     p,
		Input:     text,
	}
	if isFake {
		rec.Result = ResultFake
		rec.Category = intel.FakeJobScam.String()
	}
	rec.Duration = s.now().Sub(start)
	s.record(ctx, *rec)
	return out, nil
}
