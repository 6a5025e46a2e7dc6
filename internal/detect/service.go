// Package detect scores messages, URLs and job postings for fraud. It
// combines the loaded estimators with the rule-based signals of intel and
// urlfeat and maps the result onto a risk tier.
package detect

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/intel"
	"github.com/straja-ai/rakshak/internal/logging"
)

// Service holds everything a scan needs. It is safe for concurrent use;
// each scan reads one snapshot of the model registry.
type Service struct {
	bank     *intel.PatternBank
	registry *estimator.Registry
	recorder Recorder
	logger   logging.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the recorder that receives every completed scan.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a service over the pattern bank and model registry.
func NewService(bank *intel.PatternBank, registry *estimator.Registry, opts ...Option) *Service {
	s := &Service{
		bank:     bank,
		registry: registry,
		logger:   logging.NewNop(),
		tracer:   noop.NewTracerProvider().Tracer(""),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Models returns the model generation scans currently use.
func (s *Service) Models() *estimator.Set {
	return s.registry.Current()
}

func (s *Service) startSpan(ctx context.Context, kind Kind) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "detect."+string(kind), trace.WithAttributes(attribute.String("rakshak.kind", string(kind))))
}

func endSpan(span trace.Span, rec *ScanRecord, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Detail(err))
	} else if rec != nil {
		span.SetAttributes(
			attribute.String("rakshak.result", string(rec.Result)),
			attribute.String("rakshak.tier", rec.Tier.String()),
			attribute.Float64("rakshak.score", rec.Score),
		)
	}
	span.End()
}

func (s *Service) record(ctx context.Context, rec ScanRecord) {
	if s.recorder != nil {
		s.recorder.RecordScan(ctx, rec)
	}
}

// predict runs one estimator and checks its answer is a probability.
func predict(role string, e estimator.Estimator, x estimator.Vector) (float64, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return 0, &EstimatorError{Role: role, Err: err}
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, &EstimatorError{Role: role, Err: fmt.Errorf("probability %v outside [0,1]", p)}
	}
	return p, nil
}

func clamp01(p float64) float64 {
	return math.Min(math.Max(p, 0), 1)
}

// round4 rounds to four decimals for display.
func round4(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}
