//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// RewrittenProfile is a resume rewritten to target a specific job.
type RewrittenProfile struct {
	Name       string              `json:"name"`
	Contact    string              `json:"contact"`
	Summary    string              `json:"summary,omitempty"`
	Skills     []string            `json:"skills"`
	Experience []ProfileExperience `json:"experience"`
	Projects   []ProfileProject    `json:"projects"`
	// Education entries are kept as raw JSON because the model returns
	// either plain strings or objects.
	Education []json.RawMessage `json:"education"`
}

// ProfileExperience is a rewritten position.
type ProfileExperience struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Duration string   `json:"duration"`
	Bullets  []string `json:"bullets"`
}

// ProfileProject is a rewritten project entry.
type ProfileProject struct {
	Name         string   `json:"name"`
	Technologies []string `json:"technologies"`
	Bullets      []string `json:"bullets"`
}
