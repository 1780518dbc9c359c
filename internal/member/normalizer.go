package member

import (
	"context"
	"strings"

	"github.com/ignite/audience-hub/internal/domain"
)

// LabelLookup resolves candidate names to labels that already exist in
// storage, matching case-insensitively. Implementations must scope the
// query to the caller's transaction.
type LabelLookup func(ctx context.Context, names []string) ([]domain.Label, error)

// NormalizeLabels prepares a proposed label list for persistence.
//
// Each name is trimmed, then later entries whose trimmed name matches an
// earlier kept entry case-insensitively are dropped (first occurrence wins,
// order preserved). Surviving entries that match a stored label
// case-insensitively take on the stored label's exact name and ID, so a
// label that already exists as "Sports" is never re-created as "sports".
// Unmatched entries keep their trimmed name and will be created by the
// association layer.
func NormalizeLabels(ctx context.Context, proposed []domain.Label, lookup LabelLookup) ([]domain.Label, error) {
	if len(proposed) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(proposed))
	kept := make([]domain.Label, 0, len(proposed))
	for _, l := range proposed {
		l.Name = strings.TrimSpace(l.Name)
		key := strings.ToLower(l.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, l)
	}

	names := make([]string, len(kept))
	for i, l := range kept {
		names[i] = l.Name
	}
	existing, err := lookup(ctx, names)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]domain.Label, len(existing))
	for _, l := range existing {
		stored[strings.ToLower(l.Name)] = l
	}
	for i := range kept {
		if match, ok := stored[strings.ToLower(kept[i].Name)]; ok {
			kept[i].ID = match.ID
			kept[i].Name = match.Name
		}
	}
	return kept, nil
}
