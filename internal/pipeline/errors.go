package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
)

// NotFoundError is returned when a referenced candidate or job record does not exist.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// PreconditionError is recorded when a stage runs without the fields it reads.
type PreconditionError struct {
	Stage   steps.Stage
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition unmet for %s: missing %s", e.Stage, strings.Join(e.Missing, ", "))
}

// UpstreamError wraps a failure raised by a collaborator.
type UpstreamError struct {
	Collaborator string
	Cause        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Collaborator, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// StageError is the value recorded in State.Err. It identifies the failing stage.
type StageError struct {
	Stage steps.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RunError is the aggregate failure returned by the driver after all stages ran.
type RunError struct {
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("pipeline execution failed: %v", e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
