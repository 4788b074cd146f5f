// Package parsing extracts structured candidate and job payloads from raw text using an LLM.
package parsing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/llm"
	"github.com/victorzhu443/firstplay-backend/internal/logger"
	"github.com/victorzhu443/firstplay-backend/internal/schemas"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Parser implements the candidate and job parsers on top of an llm.Factory.
type Parser struct {
	factory llm.Factory
	logger  *zap.Logger
}

// New creates a Parser. A client is built from factory for every call.
func New(factory llm.Factory, log *zap.Logger) *Parser {
	return &Parser{factory: factory, logger: logger.OrNop(log)}
}

// ParseCandidate extracts a ParsedCandidate from resume text.
func (p *Parser) ParseCandidate(ctx context.Context, rawText string) (*types.ParsedCandidate, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, &ValidationError{Field: "raw_text", Message: "resume text is empty"}
	}

	prompt := llm.BuildExtractionPrompt(llm.ResumeSchema(), text)

	var parsed types.ParsedCandidate
	if err := llm.GenerateStructured(ctx, p.factory, llm.TierStandard, prompt, schemas.Candidate, &parsed); err != nil {
		return nil, err
	}

	parsed.Skills = CleanSkills(parsed.Skills)
	p.logger.Debug("parsed candidate",
		zap.String("name", parsed.Name),
		zap.Int("skills", len(parsed.Skills)),
		zap.Int("experience", len(parsed.Experience)),
	)
	return &parsed, nil
}

// ParseJob extracts a ParsedJob from job description text.
func (p *Parser) ParseJob(ctx context.Context, rawText string) (*types.ParsedJob, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, &ValidationError{Field: "raw_text", Message: "job description text is empty"}
	}

	prompt := llm.BuildExtractionPrompt(llm.JobSkillsSchema(), text)

	var parsed types.ParsedJob
	if err := llm.GenerateStructured(ctx, p.factory, llm.TierStandard, prompt, schemas.Job, &parsed); err != nil {
		return nil, err
	}

	parsed.RequiredSkills = CleanSkills(parsed.RequiredSkills)
	parsed.PreferredSkills = CleanSkills(parsed.PreferredSkills)
	p.logger.Debug("parsed job",
		zap.String("job_title", parsed.JobTitle),
		zap.Int("required", len(parsed.RequiredSkills)),
		zap.Int("preferred", len(parsed.PreferredSkills)),
	)
	return &parsed, nil
}

// CleanSkills trims labels and drops blanks, keeping order and duplicates.
// Blank labels would otherwise match each other during gap analysis.
func CleanSkills(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if label = strings.TrimSpace(label); label != "" {
			out = append(out, label)
		}
	}
	return out
}
