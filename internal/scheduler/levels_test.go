package scheduler

import (
	"errors"
	"sort"
	"testing"
)

// levelIDs flattens computed levels into sorted id sets for comparison.
func levelIDs(levels []Level) [][]string {
	out := make([][]string, 0, len(levels))
	for _, level := range levels {
		ids := make([]string, 0, len(level))
		for _, t := range level {
			ids = append(ids, t.ID)
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	return out
}

func TestComputeLevels(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *planBuilder
		want    [][]string
		wantErr bool
	}{
		{
			name: "independent tasks form a single level",
			build: func() *planBuilder {
				return newPlanBuilder().task("A").task("B").task("C").task("D")
			},
			want: [][]string{{"A", "B", "C", "D"}},
		},
		{
			name: "linear chain, one task per level",
			build: func() *planBuilder {
				return newPlanBuilder().task("A").task("B", "A").task("C", "B")
			},
			want: [][]string{{"A"}, {"B"}, {"C"}},
		},
		{
			name: "diamond",
			build: func() *planBuilder {
				return newPlanBuilder().task("A").task("B").
					task("C", "A", "B").task("D", "A").task("E", "C", "D")
			},
			want: [][]string{{"A", "B"}, {"C", "D"}, {"E"}},
		},
		{
			name: "cycle trips the completeness check",
			build: func() *planBuilder {
				return newPlanBuilder().task("A", "B").task("B", "A")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGraph(tt.build().build())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			levels, err := ComputeLevels(g)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var circular *CircularDependencyError
				if !errors.As(err, &circular) {
					t.Fatalf("expected CircularDependencyError, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := levelIDs(levels)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d levels %v, got %v", len(tt.want), tt.want, got)
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("level %d: expected %v, got %v", i, tt.want[i], got[i])
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Fatalf("level %d: expected %v, got %v", i, tt.want[i], got[i])
					}
				}
			}
		})
	}
}

func TestComputeLevelsPlacesEveryTask(t *testing.T) {
	b := newPlanBuilder().
		task("root").
		task("left", "root").task("right", "root").
		task("join", "left", "right").
		task("island")

	g, err := BuildGraph(b.build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	levels, err := ComputeLevels(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, level := range levels {
		total += len(level)
	}
	if total != g.Len() {
		t.Errorf("expected %d placed tasks, got %d", g.Len(), total)
	}
}
