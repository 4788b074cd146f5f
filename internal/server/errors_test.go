package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/victorzhu443/firstplay-backend/internal/fetch"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/service"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &pipeline.NotFoundError{Kind: "resume", ID: uuid.New()}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", &pipeline.NotFoundError{Kind: "job", ID: uuid.New()}), http.StatusNotFound},
		{"validation", &ErrValidation{Field: "resume_id", Message: "required"}, http.StatusBadRequest},
		{"field error", &types.FieldError{Field: "url", Message: "bad"}, http.StatusBadRequest},
		{"input error", &service.InputError{Message: "bad upload"}, http.StatusBadRequest},
		{"prerequisite", &service.PrerequisiteError{Message: "parse first"}, http.StatusBadRequest},
		{"queue disabled", service.ErrQueueDisabled, http.StatusServiceUnavailable},
		{"fetch timeout", &fetch.Error{Message: "timeout", Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"fetch status", &fetch.Error{Message: "HTTP 403", StatusCode: http.StatusForbidden}, http.StatusForbidden},
		{"fetch other", &fetch.Error{Message: "dns", Cause: errors.New("no such host")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Request timed out while fetching the job posting",
		errorMessage(&fetch.Error{Cause: context.DeadlineExceeded}))
	assert.Equal(t, "Failed to fetch job posting: HTTP 404",
		errorMessage(&fetch.Error{StatusCode: 404}))
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "job_id", Message: "invalid format"}
	assert.Equal(t, "validation error: job_id - invalid format", err.Error())
}
