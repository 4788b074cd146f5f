package rewriting

import (
	"regexp"
	"strings"

	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Common strong action verbs for resume bullets
var strongVerbs = map[string]bool{
	"achieved": true, "architected": true, "automated": true, "built": true,
	"created": true, "cut": true, "delivered": true, "designed": true,
	"developed": true, "drove": true, "engineered": true, "implemented": true,
	"improved": true, "increased": true, "launched": true, "led": true,
	"migrated": true, "optimized": true, "reduced": true, "scaled": true,
	"shipped": true, "transformed": true, "wrote": true,
}

var digitPattern = regexp.MustCompile(`\d`)

// StyleChecksResult holds the style findings for one bullet
type StyleChecksResult struct {
	StrongVerb bool
	Quantified bool
}

// Passed reports whether every check passed.
func (r StyleChecksResult) Passed() bool {
	return r.StrongVerb && r.Quantified
}

// ValidateStyle checks a bullet for a leading action verb and a measurable result.
func ValidateStyle(bullet string) StyleChecksResult {
	return StyleChecksResult{
		StrongVerb: checkStrongVerb(strings.ToLower(strings.TrimSpace(bullet))),
		Quantified: checkQuantifiedImpact(bullet),
	}
}

// CountWeakBullets returns how many rewritten bullets fail a style check.
func CountWeakBullets(profile *types.RewrittenProfile) (weak, total int) {
	check := func(bullets []string) {
		for _, b := range bullets {
			total++
			if !ValidateStyle(b).Passed() {
				weak++
			}
		}
	}
	for _, exp := range profile.Experience {
		check(exp.Bullets)
	}
	for _, proj := range profile.Projects {
		check(proj.Bullets)
	}
	return weak, total
}

func checkStrongVerb(textLower string) bool {
	words := strings.Fields(textLower)
	if len(words) == 0 {
		return false
	}

	firstWord := strings.TrimRight(words[0], ".,!?;:")
	if strongVerbs[firstWord] {
		return true
	}

	// past tense verbs are usually action verbs
	return strings.HasSuffix(firstWord, "ed") && len(firstWord) > 3
}

func checkQuantifiedImpact(text string) bool {
	return digitPattern.MatchString(text) || strings.Contains(text, "%")
}
