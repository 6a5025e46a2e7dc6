package detect

import (
	"context"
	"time"

	"github.com/straja-ai/rakshak/internal/safety"
)

// Kind names the input a scan looked at.
type Kind string

const (
	KindMessage Kind = "message"
	KindURL     Kind = "url"
	KindJob     Kind = "job"
)

// Result is the recorded verdict of a scan.
type Result string

const (
	ResultScam     Result = "scam"
	ResultPhishing Result = "phishing"
	ResultFake     Result = "fake"
	ResultSafe     Result = "safe"
	ResultLegit    Result = "legit"
)

// IsThreat reports whether r is a positive verdict.
func (r Result) IsThreat() bool {
	switch r {
	case ResultScam, ResultPhishing, ResultFake:
		return true
	}
	return false
}

// ScanRecord summarizes one completed scan for recorders.
type ScanRecord struct {
	Timestamp time.Time
	Kind      Kind
	Result    Result
	Tier      safety.Tier
	// Category is set only for threats.
	Category string
	Score    float64
	Duration time.Duration
	// Input is the raw scanned content. Recorders that persist or ship it
	// must redact it first.
	Input string
	// FailedEstimators lists roles whose failure was absorbed.
	FailedEstimators []string
}

// Recorder receives every completed scan. RecordScan must not block.
type Recorder interface {
	RecordScan(ctx context.Context, rec ScanRecord)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, rec ScanRecord)

func (f RecorderFunc) RecordScan(ctx context.Context, rec ScanRecord) { f(ctx, rec) }

// MultiRecorder fans a record out to every non-nil recorder in order.
func MultiRecorder(recorders ...Recorder) Recorder {
	kept := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return RecorderFunc(func(ctx context.Context, rec ScanRecord) {
		for _, r := range kept {
			r.RecordScan(ctx, rec)
		}
	})
}
