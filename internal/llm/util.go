// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock strips markdown fences and any conversational text around the
// first JSON object or array in an LLM response.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// drop a language tag such as "json" on the fence line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			tag := text[:idx]
			if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	var extracted string
	if text[start] == '{' {
		extracted = extractJSONObject(text[start:])
	} else {
		extracted = extractJSONArray(text[start:])
	}
	if extracted == "" {
		return text
	}
	return extracted
}

func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

// extractBalanced returns the prefix of s from its opening delimiter to the
// matching close, ignoring delimiters inside JSON strings.
func extractBalanced(s string, open, closing byte) string {
	if s == "" || s[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
