package rewriting

import (
	"strings"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// dropClaimedMissing removes skills the gap analysis reported as missing from the
// rewritten skills list and returns the labels that were removed.
func dropClaimedMissing(profile *types.RewrittenProfile, gap skills.GapResult) []string {
	missing := gap.Missing()
	if len(missing) == 0 {
		return nil
	}

	var dropped []string
	kept := profile.Skills[:0]
	for _, label := range profile.Skills {
		if matchesAny(label, missing) {
			dropped = append(dropped, label)
			continue
		}
		kept = append(kept, label)
	}
	profile.Skills = kept

	return dropped
}

// inventedEmployers returns rewritten companies that do not appear in the original resume.
func inventedEmployers(original *types.ParsedCandidate, rewritten *types.RewrittenProfile) []string {
	known := make(map[string]bool, len(original.Experience))
	for _, exp := range original.Experience {
		known[strings.ToLower(strings.TrimSpace(exp.Company))] = true
	}

	var invented []string
	for _, exp := range rewritten.Experience {
		key := strings.ToLower(strings.TrimSpace(exp.Company))
		if key != "" && !known[key] {
			invented = append(invented, exp.Company)
		}
	}
	return invented
}

func matchesAny(label string, candidates []string) bool {
	for _, c := range candidates {
		if skills.Matches(label, c) {
			return true
		}
	}
	return false
}
