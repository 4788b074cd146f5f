//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/victorzhu443/firstplay-backend/internal/skills"

// ParsedJob is the structured form of a job description produced by the job parser.
type ParsedJob struct {
	JobTitle         string   `json:"job_title"`
	Company          string   `json:"company,omitempty"`
	RequiredSkills   []string `json:"required_skills"`
	PreferredSkills  []string `json:"preferred_skills"`
	Keywords         []string `json:"keywords"`
	Responsibilities []string `json:"responsibilities"`
	Qualifications   []string `json:"qualifications"`
}

// ComputeGapFromProfiles compares the skills of a parsed candidate against a parsed job.
// A nil profile contributes no skills.
func ComputeGapFromProfiles(candidate *ParsedCandidate, job *ParsedJob) skills.GapResult {
	var have, required, preferred []string
	if candidate != nil {
		have = candidate.Skills
	}
	if job != nil {
		required, preferred = job.RequiredSkills, job.PreferredSkills
	}
	return skills.ComputeGap(have, required, preferred)
}
