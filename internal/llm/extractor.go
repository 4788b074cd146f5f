// Package llm - extractor.go builds structured-extraction prompts from a field schema.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines what to extract from a document and how the JSON output is shaped.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "Resume", "JobSkills")
	Description string        // Prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint rendered into the prompt
	Description string // Description for the LLM
	Required    bool
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent anything.\n")
	sb.WriteString("- Use an empty string or empty list when a field is absent.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// ResumeSchema returns the extraction schema for resumes.
func ResumeSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "Resume",
		Description: `You are an expert resume parser. Extract the candidate's contact details, skills,
work experience, projects, and education from the resume text below.
List each skill as a short label (e.g. "Python", "PostgreSQL", "React"); split comma separated skill lines.`,
		Fields: []SchemaField{
			{Name: "name", Description: "Full name of the candidate", Required: true},
			{Name: "email", Description: "Email address"},
			{Name: "phone", Description: "Phone number"},
			{Name: "skills", Type: `["string"]`, Description: "Technical and professional skills", Required: true},
			{
				Name:        "experience",
				Type:        `[{"company": "string", "title": "string", "duration": "string", "bullets": ["string"]}]`,
				Description: "Positions in reverse chronological order, bullets copied verbatim",
				Required:    true,
			},
			{
				Name:        "projects",
				Type:        `[{"name": "string", "description": "string", "technologies": ["string"], "highlights": ["string"]}]`,
				Description: "Personal or academic projects",
			},
			{
				Name:        "education",
				Type:        `[{"institution": "string", "degree": "string", "graduation_date": "string", "gpa": "string"}]`,
				Description: "Degrees and programs",
			},
		},
	}
}

// JobSkillsSchema returns the extraction schema for job descriptions.
func JobSkillsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobSkills",
		Description: `You are an expert job posting parser. Extract the role, company, and the skills the posting asks for.
Required skills are those stated as must-have or minimum qualifications; preferred skills are nice-to-have or bonus.
List each skill as a short label (e.g. "Go", "AWS", "Kubernetes"). Do not repeat a skill in both lists.
EXCLUDE: EEO statements, benefits, legal disclaimers.`,
		Fields: []SchemaField{
			{Name: "job_title", Description: "Role title", Required: true},
			{Name: "company", Description: "Hiring company name"},
			{Name: "required_skills", Type: `["string"]`, Description: "Must-have skills", Required: true},
			{Name: "preferred_skills", Type: `["string"]`, Description: "Nice-to-have skills", Required: true},
			{Name: "keywords", Type: `["string"]`, Description: "Other notable terms (domains, methodologies)"},
			{Name: "responsibilities", Type: `["string"]`, Description: "Job duties, verbatim"},
			{Name: "qualifications", Type: `["string"]`, Description: "Education and experience qualifications, verbatim"},
		},
	}
}
