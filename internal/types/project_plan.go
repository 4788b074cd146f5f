//nolint:revive // types is a standard Go package name pattern
package types

// Difficulty levels accepted for a ProjectIdea.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// ProjectIdea is a portfolio project suggested to close part of a skill gap.
type ProjectIdea struct {
	Title             string   `json:"title" validate:"required"`
	SkillTargets      []string `json:"skill_targets" validate:"required,min=1"`
	Difficulty        string   `json:"difficulty" validate:"oneof=Beginner Intermediate Advanced"`
	Description       string   `json:"description" validate:"required"`
	EstimatedDuration string   `json:"estimated_duration"`
	KeyFeatures       []string `json:"key_features"`
	Technologies      []string `json:"technologies"`
}

// ProjectPlan wraps the generated project ideas as stored.
type ProjectPlan struct {
	Projects []ProjectIdea `json:"projects" validate:"dive"`
}
