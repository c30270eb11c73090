package verify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies pipeline failures. Client input problems carry
// violations; oracle problems carry the underlying cause.
type ErrorKind string

const (
	KindContentLengthInvalid  ErrorKind = "ContentLengthInvalid"
	KindInsufficientSources   ErrorKind = "InsufficientSources"
	KindInvalidSource         ErrorKind = "InvalidSource"
	KindInvalidRebuttalTarget ErrorKind = "InvalidRebuttalTarget"
	KindOracleResponseInvalid ErrorKind = "OracleResponseInvalid"
	KindOracleUnavailable     ErrorKind = "OracleUnavailable"
	KindConcurrencyConflict   ErrorKind = "ConcurrencyConflict"
)

// Violation is a single structural problem found by the constraint
// checker. SourceIndex is -1 unless the violation names a source.
type Violation struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	SourceIndex int       `json:"source_index,omitempty"`
}

// PipelineError is the failure contract of the verification pipeline.
type PipelineError struct {
	Kind       ErrorKind
	Message    string
	Violations []Violation
	Cause      error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

// Retryable reports whether the same submission attempt may be retried
// without changing its inputs.
func (e *PipelineError) Retryable() bool {
	return e.Kind == KindOracleUnavailable
}

func newConstraintError(violations []Violation) *PipelineError {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return &PipelineError{
		// The leading violation names the error; the full list rides along.
		Kind:       violations[0].Kind,
		Message:    strings.Join(msgs, "; "),
		Violations: violations,
	}
}

// KindOf extracts the pipeline error kind, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
