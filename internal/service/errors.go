package service

import (
	"errors"
	"fmt"
)

// ErrQueueDisabled is returned by Enqueue when no broker is configured.
var ErrQueueDisabled = errors.New("asynchronous runs are not configured")

var errEmptyParse = errors.New("parser returned no result")

// InputError reports a request the caller must fix: bad upload, bad URL, text too short.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// PrerequisiteError reports that an earlier step has to run first.
type PrerequisiteError struct {
	Message string
}

func (e *PrerequisiteError) Error() string {
	return e.Message
}

var (
	errCandidateNotParsed = &PrerequisiteError{Message: "Resume must be parsed first. Call POST /api/resume/parse"}
	errJobNotParsed       = &PrerequisiteError{Message: "Job description must be parsed first. Call POST /api/job/parse"}
	errNoAnalysis         = &PrerequisiteError{Message: "Gap analysis must be completed first. Call POST /api/analyze"}
)
