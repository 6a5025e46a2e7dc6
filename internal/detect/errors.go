package detect

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any estimator ran.
	ErrValidation = errors.New("detect: invalid input")
	// ErrServiceUnavailable marks a scorer whose estimators are missing or
	// failed.
	ErrServiceUnavailable = errors.New("detect: service unavailable")
)

// Caller-facing error details.
const (
	DetailEmptyMessage   = "Message cannot be empty"
	DetailEmptyURL       = "URL cannot be empty"
	DetailJobTooShort    = "Please provide job posting details"
	DetailTextNotLoaded  = "Text scam models not loaded. Train models first."
	DetailJobNotLoaded   = "Job scam models not loaded. Train models first."
	DetailTextModelError = "Text scam models failed to score the message."
	DetailJobModelError  = "Job scam model failed to score the posting."
)

// Error carries a caller-facing detail and classifies as ErrValidation or
// ErrServiceUnavailable under errors.Is.
type Error struct {
	Detail string
	kind   error
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.kind, e.Detail, e.cause)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.Detail)
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func invalid(detail string) error {
	return &Error{Detail: detail, kind: ErrValidation}
}

func unavailable(detail string, cause error) error {
	return &Error{Detail: detail, kind: ErrServiceUnavailable, cause: cause}
}

// EstimatorError reports a vectorizer or estimator that failed while
// scoring.
type EstimatorError struct {
	Role string
	Err  error
}

func (e *EstimatorError) Error() string {
	return fmt.Sprintf("estimator %s: %v", e.Role, e.Err)
}

func (e *EstimatorError) Unwrap() error { return e.Err }

// Detail returns the caller-facing message of err, or a generic one.
func Detail(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return "Internal server error"
}
