package skills

// FindMatching returns the reference labels that have a matching candidate label.
// Output keeps reference order and reference spelling.
func FindMatching(candidate, reference []string) []string {
	if len(candidate) == 0 || len(reference) == 0 {
		return []string{}
	}

	keys := indexByKey(candidate)
	matched := make([]string, 0, len(reference))
	for _, label := range reference {
		if _, ok := keys[Normalize(label)]; ok {
			matched = append(matched, label)
		}
	}
	return matched
}

// indexByKey maps each normalized key to the first candidate label that produced it.
func indexByKey(labels []string) map[string]string {
	keys := make(map[string]string, len(labels))
	for _, label := range labels {
		key := Normalize(label)
		if _, exists := keys[key]; !exists {
			keys[key] = label
		}
	}
	return keys
}
