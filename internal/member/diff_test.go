package member

import (
	"testing"

	"github.com/ignite/audience-hub/internal/domain"
)

func ids2(labels []domain.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.ID
	}
	return out
}

func TestDiffLabels(t *testing.T) {
	a := domain.Label{ID: "a", Name: "Alpha"}
	b := domain.Label{ID: "b", Name: "Beta"}
	c := domain.Label{ID: "c", Name: "Gamma"}

	tests := []struct {
		name         string
		before       []domain.Label
		after        []domain.Label
		wantAttached []string
		wantDetached []string
	}{
		{"no change", []domain.Label{a, b}, []domain.Label{a, b}, nil, nil},
		{"all attached", nil, []domain.Label{a, b}, []string{"a", "b"}, nil},
		{"all detached", []domain.Label{a, b}, nil, nil, []string{"a", "b"}},
		{"swap one", []domain.Label{a, b}, []domain.Label{a, c}, []string{"c"}, []string{"b"}},
		{"reorder only", []domain.Label{a, b}, []domain.Label{b, a}, nil, nil},
		{"both empty", nil, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attached, detached := diffLabels(tt.before, tt.after)
			gotA, gotD := ids2(attached), ids2(detached)
			if len(gotA) != len(tt.wantAttached) {
				t.Fatalf("attached = %v, want %v", gotA, tt.wantAttached)
			}
			for i := range gotA {
				if gotA[i] != tt.wantAttached[i] {
					t.Errorf("attached[%d] = %q, want %q", i, gotA[i], tt.wantAttached[i])
				}
			}
			if len(gotD) != len(tt.wantDetached) {
				t.Fatalf("detached = %v, want %v", gotD, tt.wantDetached)
			}
			for i := range gotD {
				if gotD[i] != tt.wantDetached[i] {
					t.Errorf("detached[%d] = %q, want %q", i, gotD[i], tt.wantDetached[i])
				}
			}
		})
	}
}
