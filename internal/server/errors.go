package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/victorzhu443/firstplay-backend/internal/fetch"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/service"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		field      *types.FieldError
		verrs      validator.ValidationErrors
		input      *service.InputError
		prereq     *service.PrerequisiteError
		fetchErr   *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case pipeline.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &field), errors.As(err, &verrs),
		errors.As(err, &input), errors.As(err, &prereq), pipeline.IsPrecondition(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrQueueDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		if fetchErr.Timeout() {
			return http.StatusGatewayTimeout
		}
		if fetchErr.StatusCode >= 400 {
			return fetchErr.StatusCode
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for err.
func errorMessage(err error) string {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		switch {
		case fetchErr.Timeout():
			return "Request timed out while fetching the job posting"
		case fetchErr.StatusCode >= 400:
			return fmt.Sprintf("Failed to fetch job posting: HTTP %d", fetchErr.StatusCode)
		default:
			return "Error fetching job posting: " + fetchErr.Error()
		}
	}
	return err.Error()
}
