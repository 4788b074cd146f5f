// Package generation proposes portfolio projects that close a candidate's skill gap.
package generation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/llm"
	"github.com/victorzhu443/firstplay-backend/internal/logger"
	"github.com/victorzhu443/firstplay-backend/internal/prompts"
	"github.com/victorzhu443/firstplay-backend/internal/schemas"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// MaxProjects caps the number of ideas kept from one generation.
const MaxProjects = 4

// ProjectGenerator implements the project generation collaborator.
type ProjectGenerator struct {
	factory llm.Factory
	logger  *zap.Logger
}

// New creates a ProjectGenerator. A client is built from factory for every call.
func New(factory llm.Factory, log *zap.Logger) *ProjectGenerator {
	return &ProjectGenerator{factory: factory, logger: logger.OrNop(log)}
}

// GenerateProjects asks the model for project ideas targeting the gap's missing skills.
func (g *ProjectGenerator) GenerateProjects(ctx context.Context, gap skills.GapResult) ([]types.ProjectIdea, error) {
	tmpl, err := prompts.ProjectIdeas()
	if err != nil {
		return nil, err
	}
	prompt, err := tmpl.Render(map[string]string{
		"Overlapping":      bulletList(gap.Overlapping),
		"MissingRequired":  bulletList(gap.MissingRequired),
		"MissingPreferred": bulletList(gap.MissingPreferred),
	})
	if err != nil {
		return nil, err
	}

	var plan types.ProjectPlan
	if err := llm.GenerateStructured(ctx, g.factory, llm.TierAdvanced, prompt, schemas.ProjectPlan, &plan); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, &llm.ParseError{Message: "invalid project plan", Cause: err}
	}

	ideas := rankByGapCoverage(plan.Projects, gap)
	if len(ideas) > MaxProjects {
		ideas = ideas[:MaxProjects]
	}

	g.logger.Debug("generated projects",
		zap.Int("count", len(ideas)),
		zap.Int("missing_required", len(gap.MissingRequired)),
	)
	return ideas, nil
}

// rankByGapCoverage orders ideas by how many missing required skills they target,
// then missing preferred skills. Ties keep model order.
func rankByGapCoverage(ideas []types.ProjectIdea, gap skills.GapResult) []types.ProjectIdea {
	type scored struct {
		idea                types.ProjectIdea
		required, preferred int
	}
	scoredIdeas := make([]scored, len(ideas))
	for i, idea := range ideas {
		scoredIdeas[i] = scored{
			idea:      idea,
			required:  len(skills.FindMatching(idea.SkillTargets, gap.MissingRequired)),
			preferred: len(skills.FindMatching(idea.SkillTargets, gap.MissingPreferred)),
		}
	}

	sort.SliceStable(scoredIdeas, func(i, j int) bool {
		if scoredIdeas[i].required != scoredIdeas[j].required {
			return scoredIdeas[i].required > scoredIdeas[j].required
		}
		return scoredIdeas[i].preferred > scoredIdeas[j].preferred
	})

	out := make([]types.ProjectIdea, len(scoredIdeas))
	for i, s := range scoredIdeas {
		out[i] = s.idea
	}
	return out
}

func bulletList(labels []string) string {
	if len(labels) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString(fmt.Sprintf("- %s\n", l))
	}
	return strings.TrimRight(sb.String(), "\n")
}
