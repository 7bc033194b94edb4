package survey

import "strings"

// isCorrect implements the stateless grading rule: an answer is correct iff
// no selected id references "unknown", at least one selected id is a
// target, and none is a trap or filler. An id referencing neither a known
// prefix (e.g. a stale/unknown option id) is treated as a non-target
// selection.
func isCorrect(selectedOptionIDs []string) bool {
	hasTarget := false
	for _, id := range selectedOptionIDs {
		switch {
		case strings.Contains(id, "unknown"):
			return false
		case strings.HasPrefix(id, "trap_"):
			return false
		case strings.HasPrefix(id, "filler_"):
			return false
		case strings.HasPrefix(id, "target_"):
			hasTarget = true
		}
	}
	return hasTarget
}
