// Package skills implements skill label normalization, matching, and gap analysis
// between a candidate's skills and a job's required and preferred skills.
package skills

import "strings"

// skillAliases maps lowercased skill spellings to their comparison key.
// Lookups are exact; there is no substring or fuzzy matching.
var skillAliases = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"postgresql": "postgres",
	"reactjs":    "react",
	"react.js":   "react",
	"node.js":    "node",
	"nodejs":     "node",
}

// Normalize returns the comparison key for a skill label.
// Blank labels normalize to "" and will match each other; callers should drop them first.
func Normalize(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if alias, ok := skillAliases[key]; ok {
		return alias
	}
	return key
}

// Matches reports whether two labels denote the same skill.
func Matches(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
