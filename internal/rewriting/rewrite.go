// Package rewriting rewrites a parsed candidate profile to target a specific job.
package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/llm"
	"github.com/victorzhu443/firstplay-backend/internal/logger"
	"github.com/victorzhu443/firstplay-backend/internal/prompts"
	"github.com/victorzhu443/firstplay-backend/internal/schemas"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// ValidationError is returned when the rewritten profile breaks a content rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Rewriter implements the profile rewriting collaborator.
type Rewriter struct {
	factory llm.Factory
	logger  *zap.Logger
}

// New creates a Rewriter. A client is built from factory for every call.
func New(factory llm.Factory, log *zap.Logger) *Rewriter {
	return &Rewriter{factory: factory, logger: logger.OrNop(log)}
}

// RewriteProfile rewrites candidate for job, emphasizing the overlapping skills in gap.
func (r *Rewriter) RewriteProfile(ctx context.Context, candidate *types.ParsedCandidate, job *types.ParsedJob, gap skills.GapResult) (*types.RewrittenProfile, error) {
	if candidate == nil || job == nil {
		return nil, &ValidationError{Field: "input", Message: "candidate and job are required"}
	}

	prompt, err := buildRewritePrompt(candidate, job, gap)
	if err != nil {
		return nil, err
	}

	var profile types.RewrittenProfile
	if err := llm.GenerateStructured(ctx, r.factory, llm.TierAdvanced, prompt, schemas.RewrittenProfile, &profile); err != nil {
		return nil, err
	}

	if invented := inventedEmployers(candidate, &profile); len(invented) > 0 {
		return nil, &ValidationError{
			Field:   "experience",
			Message: "unknown employers: " + strings.Join(invented, ", "),
		}
	}

	if profile.Name == "" {
		profile.Name = candidate.Name
	}
	if profile.Contact == "" {
		profile.Contact = strings.TrimSpace(strings.Join([]string{candidate.Email, candidate.Phone}, " | "))
		profile.Contact = strings.Trim(profile.Contact, " |")
	}

	if dropped := dropClaimedMissing(&profile, gap); len(dropped) > 0 {
		r.logger.Warn("removed skills the candidate does not have", zap.Strings("skills", dropped))
	}

	weak, total := CountWeakBullets(&profile)
	r.logger.Debug("rewrote profile",
		zap.String("job_title", job.JobTitle),
		zap.Int("bullets", total),
		zap.Int("weak_bullets", weak),
	)

	return &profile, nil
}

func buildRewritePrompt(candidate *types.ParsedCandidate, job *types.ParsedJob, gap skills.GapResult) (string, error) {
	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidate: %w", err)
	}
	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	tmpl, err := prompts.RewriteProfile()
	if err != nil {
		return "", err
	}
	return tmpl.Render(map[string]string{
		"Overlapping": listOrNone(gap.Overlapping),
		"Missing":     listOrNone(gap.Missing()),
		"JobTitle":    job.JobTitle,
		"Candidate":   string(candidateJSON),
		"Job":         string(jobJSON),
	})
}

func listOrNone(labels []string) string {
	if len(labels) == 0 {
		return "(none)"
	}
	return strings.Join(labels, ", ")
}
