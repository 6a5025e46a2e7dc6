// Package scanevents ships a record of every scan to external sinks
// without slowing the request path.
package scanevents

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/redact"
	"github.com/straja-ai/rakshak/internal/safety"
)

// EventVersion is bumped when Event changes shape.
const EventVersion = "1"

// Preview modes control how much of the scanned input an event carries.
const (
	PreviewMetadata = "metadata"
	PreviewRedacted = "redacted"
)

// PreviewMaxRunes caps the redacted preview.
const PreviewMaxRunes = 200

// Event is the canonical scan event payload.
type Event struct {
	Version          string        `json:"version"`
	ID               string        `json:"id"`
	Timestamp        time.Time     `json:"timestamp"`
	Kind             detect.Kind   `json:"type"`
	Result           detect.Result `json:"result"`
	Threat           bool          `json:"threat"`
	RiskLevel        safety.Tier   `json:"risk_level"`
	Category         string        `json:"category,omitempty"`
	Score            float64       `json:"score"`
	LatencyMs        float64       `json:"latency_ms"`
	Preview          string        `json:"preview,omitempty"`
	FailedEstimators []string      `json:"failed_estimators,omitempty"`
	ModelVersion     string        `json:"model_version,omitempty"`
}

// BuildParams collects the inputs of one event.
type BuildParams struct {
	Record       detect.ScanRecord
	PreviewMode  string
	ModelVersion string
}

// BuildEvent creates a scan event from a completed scan. The raw input is
// only carried in redacted form and only when the preview mode asks for it.
func BuildEvent(params BuildParams) *Event {
	rec := params.Record
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	ev := &Event{
		Version:          EventVersion,
		ID:               uuid.NewString(),
		Timestamp:        ts.UTC(),
		Kind:             rec.Kind,
		Result:           rec.Result,
		Threat:           rec.Result.IsThreat(),
		RiskLevel:        rec.Tier,
		Category:         rec.Category,
		Score:            rec.Score,
		LatencyMs:        float64(rec.Duration) / float64(time.Millisecond),
		FailedEstimators: cloneStrings(rec.FailedEstimators),
		ModelVersion:     params.ModelVersion,
	}
	if strings.EqualFold(strings.TrimSpace(params.PreviewMode), PreviewRedacted) {
		ev.Preview = redact.Preview(rec.Input, PreviewMaxRunes)
	}
	return ev
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
