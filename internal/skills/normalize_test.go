package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"JavaScript alias", "JavaScript", "js"},
		{"TypeScript alias", "TypeScript", "ts"},
		{"PostgreSQL alias", "PostgreSQL", "postgres"},
		{"ReactJS alias", "ReactJS", "react"},
		{"React.js alias", "React.js", "react"},
		{"Node.js alias", "Node.js", "node"},
		{"nodejs alias", "nodejs", "node"},
		{"surrounding whitespace", "  Python  ", "python"},
		{"no alias lowercases", "Kubernetes", "kubernetes"},
		{"punctuation is kept", "C++", "c++"},
		{"no substring matching", "JavaScript ES6", "javascript es6"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	for _, label := range []string{"Go", "React.js", " PostgreSQL ", "AWS Lambda", ""} {
		assert.Equal(t, Normalize(label), Normalize(label), label)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"JavaScript", "JS", true},
		{"React.js", "React", true},
		{"PostgreSQL", "Postgres", true},
		{"nodejs", "Node.js", true},
		{"python", "PYTHON", true},
		{"Python", "Java", false},
		{"Go", "Golang", false},
		{"AWS", "Amazon Web Services", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Matches(tt.a, tt.b))
			assert.Equal(t, tt.expected, Matches(tt.b, tt.a), "matching should be symmetric")
		})
	}
}

func TestMatches_Reflexive(t *testing.T) {
	for _, label := range []string{"Go", "TypeScript", "react.js", "Distributed Systems", "C#"} {
		assert.True(t, Matches(label, label), label)
	}
}
