package member_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ignite/audience-hub/internal/domain"
	"github.com/ignite/audience-hub/internal/member"
)

func staticLookup(stored ...domain.Label) member.LabelLookup {
	return func(_ context.Context, _ []string) ([]domain.Label, error) {
		return stored, nil
	}
}

func labelNames(labels []domain.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Name
	}
	return out
}

func TestNormalizeLabels(t *testing.T) {
	tests := []struct {
		name     string
		proposed []string
		stored   []domain.Label
		want     []string
	}{
		{
			name:     "case-insensitive dedupe keeps first casing",
			proposed: []string{"Sports", "sports", "Music"},
			want:     []string{"Sports", "Music"},
		},
		{
			name:     "existing label casing wins",
			proposed: []string{"sports"},
			stored:   []domain.Label{{ID: "lbl1", Name: "Sports"}},
			want:     []string{"Sports"},
		},
		{
			name:     "names are trimmed",
			proposed: []string{"  News  ", "news"},
			want:     []string{"News"},
		},
		{
			name:     "whitespace-only trims to empty and dedupes like any name",
			proposed: []string{"   ", "", "News"},
			want:     []string{"", "News"},
		},
		{
			name:     "order is stable",
			proposed: []string{"c", "a", "B", "A", "C"},
			want:     []string{"c", "a", "B"},
		},
		{
			name:     "empty input",
			proposed: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposed := make([]domain.Label, len(tt.proposed))
			for i, n := range tt.proposed {
				proposed[i] = domain.Label{Name: n}
			}
			got, err := member.NormalizeLabels(context.Background(), proposed, staticLookup(tt.stored...))
			if err != nil {
				t.Fatalf("NormalizeLabels() error: %v", err)
			}
			gotNames := labelNames(got)
			if len(gotNames) != len(tt.want) {
				t.Fatalf("NormalizeLabels() = %v, want %v", gotNames, tt.want)
			}
			for i := range tt.want {
				if gotNames[i] != tt.want[i] {
					t.Errorf("NormalizeLabels()[%d] = %q, want %q", i, gotNames[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeLabelsAdoptsStoredID(t *testing.T) {
	got, err := member.NormalizeLabels(context.Background(),
		[]domain.Label{{Name: "sports"}, {Name: "Fresh"}},
		staticLookup(domain.Label{ID: "lbl1", Name: "Sports"}))
	if err != nil {
		t.Fatalf("NormalizeLabels() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d labels, want 2", len(got))
	}
	if got[0].ID != "lbl1" || got[0].Name != "Sports" {
		t.Errorf("matched label = %+v, want ID lbl1 name Sports", got[0])
	}
	if got[1].ID != "" || got[1].Name != "Fresh" {
		t.Errorf("new label = %+v, want empty ID name Fresh", got[1])
	}
}

func TestNormalizeLabelsLookupError(t *testing.T) {
	boom := errors.New("db down")
	failing := func(_ context.Context, _ []string) ([]domain.Label, error) { return nil, boom }
	_, err := member.NormalizeLabels(context.Background(), []domain.Label{{Name: "x"}}, failing)
	if !errors.Is(err, boom) {
		t.Errorf("NormalizeLabels() error = %v, want %v", err, boom)
	}
}
