package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTemplates(t *testing.T) {
	tests := []struct {
		name string
		get  func() (Template, error)
		keys []string
	}{
		{"project ideas", ProjectIdeas, []string{"MissingPreferred", "MissingRequired", "Overlapping"}},
		{"rewrite profile", RewriteProfile, []string{"Candidate", "Job", "JobTitle", "Missing", "Overlapping"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := tt.get()
			require.NoError(t, err)
			assert.Equal(t, tt.keys, tmpl.Keys())
		})
	}
}

func TestRender(t *testing.T) {
	tmpl := newTemplate("greeting", "Hello {{.Name}}, you need {{.Skill}}. Bye {{.Name}}.")

	out, err := tmpl.Render(map[string]string{"Name": "Ada", "Skill": "Go", "Unused": "x"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, you need Go. Bye Ada.", out)
}

func TestRender_MissingValue(t *testing.T) {
	tmpl := newTemplate("greeting", "Hello {{.Name}}, you need {{.Skill}}.")

	_, err := tmpl.Render(map[string]string{"Name": "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greeting")
	assert.Contains(t, err.Error(), "Skill")
}

func TestRender_ValuesAreNotExpanded(t *testing.T) {
	tmpl := newTemplate("rewrite", "Resume: {{.Candidate}}\nJob: {{.Job}}")

	out, err := tmpl.Render(map[string]string{"Candidate": "I know {{.Job}} templating", "Job": "Go engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Resume: I know {{.Job}} templating\nJob: Go engineer", out)
}

func TestLookup_UnknownKey(t *testing.T) {
	_, err := lookup("rewriting.json", "nonexistent-key")
	assert.ErrorContains(t, err, "not found")

	_, err = lookup("nonexistent.json", "project-ideas")
	assert.Error(t, err)
}
