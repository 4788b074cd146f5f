// Package prompts holds the model instructions for project generation and
// profile rewriting. Templates live in embedded JSON files keyed by name and
// use {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Template is a named prompt with {{.Key}} placeholders.
type Template struct {
	Name string
	text string
	keys []string
}

// Keys returns the placeholder names the template expects, sorted.
func (t Template) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Render fills every placeholder in one pass. Values are inserted verbatim, so
// placeholder-like text inside a value is left alone. Missing values are an error.
func (t Template) Render(values map[string]string) (string, error) {
	var missing []string
	pairs := make([]string, 0, 2*len(t.keys))
	for _, key := range t.keys {
		v, ok := values[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		pairs = append(pairs, "{{."+key+"}}", v)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s: no value for %s", t.Name, strings.Join(missing, ", "))
	}
	return strings.NewReplacer(pairs...).Replace(t.text), nil
}

// ProjectIdeas is the prompt asking for portfolio projects that close a skill gap.
func ProjectIdeas() (Template, error) {
	return lookup("generation.json", "project-ideas")
}

// RewriteProfile is the prompt asking for a job-tailored rewrite of a parsed resume.
func RewriteProfile() (Template, error) {
	return lookup("rewriting.json", "rewrite-profile")
}

var loadFiles = sync.OnceValues(func() (map[string]map[string]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}
	out := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		data, err := files.ReadFile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", e.Name(), err)
		}
		var byKey map[string]string
		if err := json.Unmarshal(data, &byKey); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", e.Name(), err)
		}
		out[e.Name()] = byKey
	}
	return out, nil
})

func lookup(file, key string) (Template, error) {
	all, err := loadFiles()
	if err != nil {
		return Template{}, err
	}
	text, ok := all[file][key]
	if !ok {
		return Template{}, fmt.Errorf("prompt %q not found in %s", key, file)
	}
	return newTemplate(key, text), nil
}

func newTemplate(name, text string) Template {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	sort.Strings(keys)
	return Template{Name: name, text: text, keys: keys}
}
