package digest

import (
	"testing"
)

func scoredAt(id string, score, ageHours float64) ScoredPost {
	p := testPost(id, 0, 0, 0, ageHours)
	return ScoredPost{Post: p, Score: score, Strategy: "test"}
}

func TestSelect_EmptyInput(t *testing.T) {
	categories := []Category{
		{Name: "Highlights", Capacity: 10},
		{Name: "With Media", Capacity: 5, Conditions: []Condition{{Field: "has_media", Op: OpEQ, Value: 1}}},
	}

	selections := Select(nil, categories, SelectOpts{Dedupe: true})

	if len(selections) != 2 {
		t.Fatalf("got %d selections, want 2", len(selections))
	}
	for _, sel := range selections {
		if len(sel.Posts) != 0 {
			t.Errorf("category %q not empty on empty input", sel.Category.Name)
		}
	}
}

func TestSelect_CapacityRespected(t *testing.T) {
	var scored []ScoredPost
	for i := 0; i < 50; i++ {
		scored = append(scored, scoredAt(testID(i), float64(i), 1))
	}

	categories := []Category{{Name: "Top", Capacity: 7}}
	selections := Select(scored, categories, SelectOpts{Dedupe: true})

	if len(selections[0].Posts) != 7 {
		t.Errorf("len = %d, want capacity 7", len(selections[0].Posts))
	}
}

func TestSelect_FewerThanCapacity(t *testing.T) {
	scored := []ScoredPost{scoredAt("a", 1, 1), scoredAt("b", 2, 1)}
	selections := Select(scored, []Category{{Name: "Top", Capacity: 10}}, SelectOpts{})

	if len(selections[0].Posts) != 2 {
		t.Errorf("len = %d, want all 2 qualifying posts", len(selections[0].Posts))
	}
}

// The worked ordering example: A(10), then among the score-8 posts the
// lower age wins, then the lower id.
func TestSelect_TieBreakOrdering(t *testing.T) {
	a := scoredAt("a", 10, 5)
	b := scoredAt("b", 8, 3)
	c := scoredAt("c", 8, 1)
	d := scoredAt("d", 8, 1)

	selections := Select([]ScoredPost{a, b, c, d}, []Category{{Name: "Top", Capacity: 4}}, SelectOpts{Dedupe: true})

	want := []string{"a", "c", "d", "b"}
	got := selections[0].Posts
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, got[i].ID, id)
		}
	}

	// Same input, same output, every time.
	for run := 0; run < 5; run++ {
		again := Select([]ScoredPost{a, b, c, d}, []Category{{Name: "Top", Capacity: 4}}, SelectOpts{Dedupe: true})
		for i := range want {
			if again[0].Posts[i].ID != got[i].ID {
				t.Fatalf("run %d: ordering not reproducible", run)
			}
		}
	}
}

func TestSelect_BoostCollapsing(t *testing.T) {
	original := scoredAt("100", 9, 2)
	boost := scoredAt("200", 4, 1)
	boost.OriginalID = "100"
	boost.IsBoost = true

	selections := Select([]ScoredPost{original, boost}, []Category{{Name: "Top", Capacity: 10}}, SelectOpts{Dedupe: true})

	posts := selections[0].Posts
	if len(posts) != 1 {
		t.Fatalf("len = %d, want 1 after dedupe", len(posts))
	}
	if posts[0].ID != "100" {
		t.Errorf("kept %q, want the higher-scoring original", posts[0].ID)
	}
}

func TestSelect_BoostOutscoresOriginal(t *testing.T) {
	original := scoredAt("100", 2, 20)
	boost := scoredAt("200", 6, 1)
	boost.OriginalID = "100"
	boost.IsBoost = true

	selections := Select([]ScoredPost{original, boost}, []Category{{Name: "Top", Capacity: 10}}, SelectOpts{Dedupe: true})

	posts := selections[0].Posts
	if len(posts) != 1 || posts[0].ID != "200" {
		t.Fatalf("want the higher-scoring boost to represent the post, got %+v", posts)
	}
}

func TestSelect_DedupeTiePrefersOriginal(t *testing.T) {
	original := scoredAt("500", 5, 1)
	boost := scoredAt("200", 5, 1)
	boost.OriginalID = "500"
	boost.IsBoost = true

	// Boost first in input; the original must still win the tie.
	selections := Select([]ScoredPost{boost, original}, []Category{{Name: "Top", Capacity: 10}}, SelectOpts{Dedupe: true})

	posts := selections[0].Posts
	if len(posts) != 1 || posts[0].IsBoost {
		t.Fatalf("score tie should prefer the original, got %+v", posts)
	}
}

func TestSelect_DedupeIdempotent(t *testing.T) {
	original := scoredAt("100", 9, 2)
	boost := scoredAt("200", 4, 1)
	boost.OriginalID = "100"
	boost.IsBoost = true
	other := scoredAt("300", 7, 3)

	cats := []Category{{Name: "Top", Capacity: 10}}
	opts := SelectOpts{Dedupe: true}

	once := Select([]ScoredPost{original, boost, other}, cats, opts)
	twice := Select(once[0].Posts, cats, opts)

	if len(once[0].Posts) != len(twice[0].Posts) {
		t.Fatalf("second pass changed length: %d vs %d", len(once[0].Posts), len(twice[0].Posts))
	}
	for i := range once[0].Posts {
		if once[0].Posts[i].ID != twice[0].Posts[i].ID {
			t.Errorf("second pass changed entry %d", i)
		}
	}
}

func TestSelect_DedupeDisabled(t *testing.T) {
	original := scoredAt("100", 9, 2)
	boost := scoredAt("200", 4, 1)
	boost.OriginalID = "100"
	boost.IsBoost = true

	selections := Select([]ScoredPost{original, boost}, []Category{{Name: "Top", Capacity: 10}}, SelectOpts{Dedupe: false})

	if len(selections[0].Posts) != 2 {
		t.Errorf("dedupe disabled should keep both entries, got %d", len(selections[0].Posts))
	}
}

func TestSelect_PredicateFiltering(t *testing.T) {
	withMedia := scoredAt("m", 5, 1)
	withMedia.HasMedia = true
	young := scoredAt("y", 4, 1)
	young.AuthorAgeHours = 100
	plain := scoredAt("p", 9, 1)
	plain.AuthorAgeHours = 9000

	categories := []Category{
		{Name: "With Media", Capacity: 5, Conditions: []Condition{{Field: "has_media", Op: OpEQ, Value: 1}}},
		{Name: "New Voices", Capacity: 5, Conditions: []Condition{{Field: "author_age_hours", Op: OpLT, Value: 720}}},
		{Name: "All", Capacity: 5},
	}

	// AuthorAgeHours is 5000 in the fixture; override where needed.
	withMedia.AuthorAgeHours = 5000

	selections := Select([]ScoredPost{withMedia, young, plain}, categories, SelectOpts{Dedupe: true})

	if len(selections[0].Posts) != 1 || selections[0].Posts[0].ID != "m" {
		t.Errorf("media category: got %+v", selections[0].Posts)
	}
	if len(selections[1].Posts) != 1 || selections[1].Posts[0].ID != "y" {
		t.Errorf("new voices category: got %+v", selections[1].Posts)
	}
	if len(selections[2].Posts) != 3 {
		t.Errorf("unconditioned category should take all posts, got %d", len(selections[2].Posts))
	}
}

func TestSelect_PostInMultipleCategories(t *testing.T) {
	p := scoredAt("both", 5, 1)
	p.HasMedia = true

	categories := []Category{
		{Name: "All", Capacity: 5},
		{Name: "With Media", Capacity: 5, Conditions: []Condition{{Field: "has_media", Op: OpEQ, Value: 1}}},
	}

	selections := Select([]ScoredPost{p}, categories, SelectOpts{Dedupe: true})

	if len(selections[0].Posts) != 1 || len(selections[1].Posts) != 1 {
		t.Error("post qualifying for two categories should appear in both")
	}
}

func TestSelect_PercentileFloor(t *testing.T) {
	var scored []ScoredPost
	for i := 0; i < 100; i++ {
		scored = append(scored, scoredAt(testID(i), float64(i), 1))
	}

	selections := Select(scored, []Category{{Name: "Top", Capacity: 100}},
		SelectOpts{Dedupe: true, PercentileFloor: 95})

	// Scores 0..99: percentile rank of score s is (2s+1)/200*100, so
	// the floor of 95 keeps scores 95 and up.
	if len(selections[0].Posts) != 5 {
		t.Fatalf("len = %d, want 5 above the 95th percentile", len(selections[0].Posts))
	}
	if selections[0].Posts[0].Score != 99 {
		t.Errorf("top score = %v, want 99", selections[0].Posts[0].Score)
	}
}

func TestSelect_PercentileFloorSkipsSmallPools(t *testing.T) {
	scored := []ScoredPost{scoredAt("a", 1, 1), scoredAt("b", 2, 1), scoredAt("c", 3, 1)}

	selections := Select(scored, []Category{{Name: "Top", Capacity: 10}},
		SelectOpts{Dedupe: true, PercentileFloor: 95})

	if len(selections[0].Posts) != 3 {
		t.Errorf("small pool should bypass the percentile gate, got %d", len(selections[0].Posts))
	}
}

func TestCondition_Validate(t *testing.T) {
	good := Condition{Field: "age_hours", Op: OpLT, Value: 5}
	if err := good.Validate(); err != nil {
		t.Errorf("valid condition rejected: %v", err)
	}

	if err := (Condition{Field: "vibes", Op: OpLT, Value: 5}).Validate(); err == nil {
		t.Error("unknown field accepted")
	}
	if err := (Condition{Field: "age_hours", Op: "between", Value: 5}).Validate(); err == nil {
		t.Error("unknown op accepted")
	}
}

func TestCategory_Validate(t *testing.T) {
	if err := (Category{Name: "", Capacity: 5}).Validate(); err == nil {
		t.Error("nameless category accepted")
	}
	if err := (Category{Name: "x", Capacity: 0}).Validate(); err == nil {
		t.Error("zero capacity accepted")
	}
	if err := (Category{Name: "x", Capacity: 3}).Validate(); err != nil {
		t.Errorf("valid category rejected: %v", err)
	}
}

func testID(i int) string {
	return string([]byte{byte('a' + i/10), byte('0' + i%10)})
}
