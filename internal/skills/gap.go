package skills

// GapResult is the outcome of comparing a candidate's skills to a job's skills.
// JSON keys match the stored analysis format.
type GapResult struct {
	Overlapping      []string `json:"overlapping_skills"`
	MissingRequired  []string `json:"missing_required_skills"`
	MissingPreferred []string `json:"missing_preferred_skills"`
	// WeakSkills is reserved and always empty.
	WeakSkills []string `json:"weak_skills"`
}

// ComputeGap compares candidate skills against required and preferred job skills.
// Overlapping labels come from the job side and are deduplicated by exact label;
// their order is not significant. Missing lists keep job order.
func ComputeGap(candidate, required, preferred []string) GapResult {
	keys := indexByKey(candidate)

	result := GapResult{
		Overlapping:      []string{},
		MissingRequired:  []string{},
		MissingPreferred: []string{},
		WeakSkills:       []string{},
	}

	seen := make(map[string]struct{})
	classify := func(labels []string, missing *[]string) {
		for _, label := range labels {
			if _, ok := keys[Normalize(label)]; !ok {
				*missing = append(*missing, label)
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			result.Overlapping = append(result.Overlapping, label)
		}
	}

	classify(required, &result.MissingRequired)
	classify(preferred, &result.MissingPreferred)

	return result
}

// HasGaps reports whether any required or preferred skill is missing.
func (g GapResult) HasGaps() bool {
	return len(g.MissingRequired) > 0 || len(g.MissingPreferred) > 0
}

// Missing returns missing required skills followed by missing preferred skills.
func (g GapResult) Missing() []string {
	out := make([]string, 0, len(g.MissingRequired)+len(g.MissingPreferred))
	out = append(out, g.MissingRequired...)
	return append(out, g.MissingPreferred...)
}
