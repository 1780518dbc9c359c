package member

import "github.com/ignite/audience-hub/internal/domain"

// diffLabels compares a member's label set before and after a save and
// returns the labels that were attached (present only in after) and
// detached (present only in before). Comparison is by label ID; order
// follows the input slices.
func diffLabels(before, after []domain.Label) (attached, detached []domain.Label) {
	beforeIDs := make(map[string]bool, len(before))
	for _, l := range before {
		beforeIDs[l.ID] = true
	}
	afterIDs := make(map[string]bool, len(after))
	for _, l := range after {
		afterIDs[l.ID] = true
	}

	for _, l := range after {
		if !beforeIDs[l.ID] {
			attached = append(attached, l)
		}
	}
	for _, l := range before {
		if !afterIDs[l.ID] {
			detached = append(detached, l)
		}
	}
	return attached, detached
}
