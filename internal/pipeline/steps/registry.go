// Package steps defines the pipeline stages, their dependencies and the
// transition table that sequences them.
package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Stage identifies one unit of pipeline work.
type Stage string

// Stages in dependency order.
const (
	ParseCandidate   Stage = "parse_candidate"
	ParseJob         Stage = "parse_job"
	AnalyzeGap       Stage = "analyze_gap"
	GenerateProjects Stage = "generate_projects"
	RewriteProfile   Stage = "rewrite_profile"
)

// Stage categories
const (
	CategoryParsing    = "parsing"
	CategoryAnalysis   = "analysis"
	CategoryGeneration = "generation"
)

// StepDefinition defines metadata for a pipeline stage
type StepDefinition struct {
	Name         Stage
	Category     string
	Dependencies []Stage
}

// StepRegistry holds all stage definitions
var StepRegistry = map[Stage]StepDefinition{
	ParseCandidate: {
		Name:         ParseCandidate,
		Category:     CategoryParsing,
		Dependencies: []Stage{},
	},
	ParseJob: {
		Name:         ParseJob,
		Category:     CategoryParsing,
		Dependencies: []Stage{},
	},
	AnalyzeGap: {
		Name:         AnalyzeGap,
		Category:     CategoryAnalysis,
		Dependencies: []Stage{ParseCandidate, ParseJob},
	},
	// The two generation stages both read the gap result and never each other.
	GenerateProjects: {
		Name:         GenerateProjects,
		Category:     CategoryGeneration,
		Dependencies: []Stage{AnalyzeGap},
	},
	RewriteProfile: {
		Name:         RewriteProfile,
		Category:     CategoryGeneration,
		Dependencies: []Stage{ParseCandidate, ParseJob, AnalyzeGap},
	},
}

// Transitions maps each stage to the stages that run once it completes. It fixes
// execution order; StepRegistry dependencies name the outputs a stage reads.
var Transitions = map[Stage][]Stage{
	ParseCandidate:   {ParseJob},
	ParseJob:         {AnalyzeGap},
	AnalyzeGap:       {GenerateProjects, RewriteProfile},
	GenerateProjects: {},
	RewriteProfile:   {},
}

// Start is the first stage of every run.
const Start = ParseCandidate

// Sequence is the execution order of a run, derived from Transitions.
var Sequence = walkTransitions(Start)

// IsTerminal reports whether no stage follows s.
func IsTerminal(s Stage) bool {
	return len(Transitions[s]) == 0
}

// walkTransitions orders the stages reachable from start so that each one comes
// after all of its predecessors. Siblings keep their order in Transitions.
func walkTransitions(start Stage) []Stage {
	pending := make(map[Stage]int, len(Transitions))
	for _, next := range Transitions {
		for _, s := range next {
			pending[s]++
		}
	}

	order := make([]Stage, 0, len(Transitions))
	queue := []Stage{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		order = append(order, s)
		if IsTerminal(s) {
			continue
		}
		for _, next := range Transitions[s] {
			pending[next]--
			if pending[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                Stage
	MissingDependencies []Stage
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// MissingDependencies returns the dependencies of stage absent from completed.
func MissingDependencies(stage Stage, completed map[Stage]bool) ([]Stage, error) {
	def, ok := StepRegistry[stage]
	if !ok {
		return nil, fmt.Errorf("unknown step: %s", stage)
	}

	var missing []Stage
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}
	return missing, nil
}

// StepLookup reads recorded stage outcomes for a run.
type StepLookup interface {
	GetRunStep(ctx context.Context, runID uuid.UUID, step string) (*types.RunStep, error)
}

// ValidateDependencies checks if all required dependencies for a stage completed in a recorded run
func ValidateDependencies(ctx context.Context, lookup StepLookup, runID uuid.UUID, stage Stage) error {
	def, ok := StepRegistry[stage]
	if !ok {
		return fmt.Errorf("unknown step: %s", stage)
	}

	var missing []Stage
	for _, dep := range def.Dependencies {
		step, err := lookup.GetRunStep(ctx, runID, string(dep))
		if err != nil {
			return fmt.Errorf("failed to check dependency %s: %w", dep, err)
		}
		if step == nil || step.Status != types.StepStatusCompleted {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stage,
			MissingDependencies: missing,
		}
	}
	return nil
}

// GetBlockedSteps returns stages of a recorded run that did not complete because
// a dependency did not complete, in execution order.
func GetBlockedSteps(ctx context.Context, lookup StepLookup, runID uuid.UUID) ([]Stage, error) {
	var blocked []Stage
	for _, stage := range Sequence {
		existing, err := lookup.GetRunStep(ctx, runID, string(stage))
		if err != nil {
			return nil, fmt.Errorf("failed to check step %s: %w", stage, err)
		}
		if existing != nil && existing.Status == types.StepStatusCompleted {
			continue
		}
		if err := ValidateDependencies(ctx, lookup, runID, stage); err != nil {
			var depErr *DependencyError
			if !errors.As(err, &depErr) {
				return nil, err
			}
			blocked = append(blocked, stage)
		}
	}
	return blocked, nil
}
