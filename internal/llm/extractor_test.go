package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Description: "Extract things.",
		Fields: []SchemaField{
			{Name: "title", Required: true},
			{Name: "tags", Type: `["string"]`, Description: "short labels"},
		},
	}

	prompt := BuildExtractionPrompt(schema, "Senior Go Engineer")

	assert.Contains(t, prompt, "Extract things.")
	assert.Contains(t, prompt, `"title": "string" (required),`)
	assert.Contains(t, prompt, `"tags": ["string"] // short labels`)
	assert.Contains(t, prompt, "Senior Go Engineer")
}

func TestPredefinedSchemas(t *testing.T) {
	for _, schema := range []ExtractionSchema{ResumeSchema(), JobSkillsSchema()} {
		t.Run(schema.Name, func(t *testing.T) {
			assert.NotEmpty(t, schema.Description)
			names := make(map[string]bool)
			for _, f := range schema.Fields {
				assert.False(t, names[f.Name], "duplicate field %s", f.Name)
				names[f.Name] = true
			}
		})
	}
	assert.Len(t, JobSkillsSchema().Fields, 7)
}
