package projects

import (
	"testing"

	"crowdfund-go/internal/model"
)

func f(v float64) *float64 { return &v }

func ids(projects []model.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func sameIDs(t *testing.T, got []model.Project, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

var sample = []model.Project{
	{ID: "a", Category: "Art", PledgeGoal: 50, Collected: 0},
	{ID: "b", Category: "Art", PledgeGoal: 100, Collected: 40},
	{ID: "c", Category: "Music", PledgeGoal: 300, Collected: 300},
	{ID: "d", Category: "Art", PledgeGoal: 500, Collected: 10},
	{ID: "e", Category: "Art", PledgeGoal: 900, Collected: 0},
}

func TestFilterByRange(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		r     Range
		want  []string
	}{
		{"no bounds returns input", PledgeGoal, Range{}, []string{"a", "b", "c", "d", "e"}},
		{"inclusive both ends", PledgeGoal, Range{Lower: f(100), Upper: f(500)}, []string{"b", "c", "d"}},
		{"upper only", PledgeGoal, Range{Upper: f(100)}, []string{"a", "b"}},
		{"lower only", PledgeGoal, Range{Lower: f(500)}, []string{"d", "e"}},
		{"collected zero", Collected, Range{Upper: f(0)}, []string{"a", "e"}},
		{"nothing matches", Collected, Range{Lower: f(1000)}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sameIDs(t, FilterByRange(sample, tc.field, tc.r), tc.want...)
		})
	}
}

func TestFilterByRangeIsSubsetInOrder(t *testing.T) {
	r := Range{Lower: f(40), Upper: f(900)}
	got := FilterByRange(sample, PledgeGoal, r)
	pos := -1
	for _, p := range got {
		if p.PledgeGoal < 40 || p.PledgeGoal > 900 {
			t.Fatalf("project %s outside range", p.ID)
		}
		next := -1
		for i := range sample {
			if sample[i].ID == p.ID {
				next = i
			}
		}
		if next <= pos {
			t.Fatalf("project %s out of input order", p.ID)
		}
		pos = next
	}
}

func TestFieldString(t *testing.T) {
	if PledgeGoal.String() != "pledge goal" || Collected.String() != "collected amount" {
		t.Fatal("unexpected field labels")
	}
}
