//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinJobTextLength is the shortest pasted job description accepted.
const MinJobTextLength = 50

// JobURLRequest submits a job posting by URL.
type JobURLRequest struct {
	URL string `json:"url" validate:"required,min=10,startswith=http"`
}

// JobTextRequest submits a pasted job description.
type JobTextRequest struct {
	Text string `json:"jd_text" validate:"required"`
}

// AnalyzeRequest asks for a gap analysis of a parsed candidate against a parsed job.
type AnalyzeRequest struct {
	CandidateID string `json:"resume_id" validate:"required,uuid"`
	JobID       string `json:"job_id" validate:"required,uuid"`
}

// PipelineRunRequest starts a full pipeline run.
type PipelineRunRequest struct {
	CandidateID string `json:"resume_id" validate:"required,uuid"`
	JobID       string `json:"job_id" validate:"required,uuid"`
}

// GapRequest is a pure skill comparison with no stored records.
type GapRequest struct {
	CandidateSkills []string `json:"candidate_skills" jsonschema:"skills the candidate has"`
	RequiredSkills  []string `json:"required_skills" jsonschema:"skills the job requires"`
	PreferredSkills []string `json:"preferred_skills" jsonschema:"skills the job prefers"`
}

var validate = validator.New()

// Validate validates the JobURLRequest. The scheme check accepts only http:// and https://.
func (r *JobURLRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		return &FieldError{Field: "url", Message: "must start with http:// or https://"}
	}
	return nil
}

// Validate validates the JobTextRequest after trimming.
func (r *JobTextRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if err := validate.Struct(r); err != nil {
		return err
	}
	if len(r.Text) < MinJobTextLength {
		return &FieldError{Field: "jd_text", Message: "must be at least 50 characters"}
	}
	return nil
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the PipelineRunRequest using the validator.
func (r *PipelineRunRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ProjectPlan using the validator.
func (p *ProjectPlan) Validate() error {
	return validate.Struct(p)
}

// FieldError is a request validation failure on a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}
