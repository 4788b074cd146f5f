// Package types provides the structured payloads exchanged between the parsing,
// analysis, and generation stages of the coaching pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ParsedCandidate is the structured form of a resume produced by the candidate parser.
type ParsedCandidate struct {
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Projects   []ProjectEntry    `json:"projects"`
	Education  []EducationEntry  `json:"education"`
}

// ExperienceEntry is one position held by the candidate.
type ExperienceEntry struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Duration string   `json:"duration"`
	Bullets  []string `json:"bullets"`
}

// ProjectEntry is a project listed on the resume.
type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Highlights   []string `json:"highlights"`
}

// EducationEntry is one degree or program.
type EducationEntry struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	GraduationDate string `json:"graduation_date"`
	GPA            string `json:"gpa,omitempty"`
}
