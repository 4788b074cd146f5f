// Package ingestion turns uploaded resumes and fetched job postings into plain text.
package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PreviewLength is the number of characters returned as a text preview.
const PreviewLength = 200

var (
	inlineSpace = regexp.MustCompile(`\s+`)
	blankRuns   = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings and whitespace while keeping headings,
// bullets and paragraph breaks. At most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses inner whitespace. Indentation in front
// of list bullets is kept so nested lists survive.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return inlineSpace.ReplaceAllString(trimmed, " ")
	}

	body := inlineSpace.ReplaceAllString(trimmed, " ")
	if isBulletLine(trimmed) {
		if indent := len(line) - len(trimmed); indent > 0 {
			return strings.Repeat(" ", indent) + body
		}
	}
	return body
}

func isBulletLine(line string) bool {
	for _, prefix := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Preview returns the first PreviewLength characters of text. It never splits a rune.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength])
}
