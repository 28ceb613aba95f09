package digest

import "testing"

func TestDigest_EmptyAndCount(t *testing.T) {
	d := Assemble([]Selection{
		{Category: Category{Name: "Highlights", Capacity: 12}},
		{Category: Category{Name: "With Media", Capacity: 6}},
	}, Meta{Strategy: StrategyExtendedWeighted.String()})

	if d.Meta.Strategy != "ExtendedWeighted" {
		t.Errorf("meta strategy = %q, want ExtendedWeighted", d.Meta.Strategy)
	}
	if !d.IsEmpty() {
		t.Error("digest with no posts should be empty")
	}
	if d.PostCount() != 0 {
		t.Errorf("PostCount = %d, want 0", d.PostCount())
	}

	d.Selections[0].Posts = []ScoredPost{scoredAt("1", 3, 1), scoredAt("2", 2, 1)}
	d.Selections[1].Posts = []ScoredPost{scoredAt("1", 3, 1)} // same post, second category

	if d.IsEmpty() {
		t.Error("digest with posts reported empty")
	}
	if d.PostCount() != 3 {
		t.Errorf("PostCount = %d, want 3 (per-category counting)", d.PostCount())
	}
}
