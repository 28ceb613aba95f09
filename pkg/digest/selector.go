package digest

import (
	"fmt"
	"sort"
)

// Op compares a post field against a threshold.
type Op string

const (
	OpLT Op = "lt"
	OpLE Op = "le"
	OpGT Op = "gt"
	OpGE Op = "ge"
	OpEQ Op = "eq"
)

// Condition is a declarative membership test: field op value. Boolean
// fields evaluate to 0 or 1.
type Condition struct {
	Field string  `yaml:"field" json:"field"`
	Op    Op      `yaml:"op" json:"op"`
	Value float64 `yaml:"value" json:"value"`
}

// conditionFields maps condition field names to post accessors.
var conditionFields = map[string]func(*ScoredPost) float64{
	"age_hours":        func(p *ScoredPost) float64 { return p.AgeHours },
	"author_age_hours": func(p *ScoredPost) float64 { return p.AuthorAgeHours },
	"author_followers": func(p *ScoredPost) float64 { return float64(p.AuthorFollowers) },
	"favorites":        func(p *ScoredPost) float64 { return float64(p.Engagement.Favorites) },
	"boosts":           func(p *ScoredPost) float64 { return float64(p.Engagement.Boosts) },
	"replies":          func(p *ScoredPost) float64 { return float64(p.Engagement.Replies) },
	"content_length":   func(p *ScoredPost) float64 { return float64(p.ContentLength) },
	"is_boost":         func(p *ScoredPost) float64 { return boolField(p.IsBoost) },
	"is_reply":         func(p *ScoredPost) float64 { return boolField(p.IsReply) },
	"has_media":        func(p *ScoredPost) float64 { return boolField(p.HasMedia) },
}

func boolField(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Validate rejects unknown fields and operators. Called at
// configuration time so a bad category aborts before selection.
func (c Condition) Validate() error {
	if _, ok := conditionFields[c.Field]; !ok {
		return fmt.Errorf("unknown condition field %q", c.Field)
	}
	switch c.Op {
	case OpLT, OpLE, OpGT, OpGE, OpEQ:
		return nil
	default:
		return fmt.Errorf("unknown condition op %q", c.Op)
	}
}

func (c Condition) matches(p *ScoredPost) bool {
	accessor, ok := conditionFields[c.Field]
	if !ok {
		return false
	}
	v := accessor(p)
	switch c.Op {
	case OpLT:
		return v < c.Value
	case OpLE:
		return v <= c.Value
	case OpGT:
		return v > c.Value
	case OpGE:
		return v >= c.Value
	case OpEQ:
		return v == c.Value
	}
	return false
}

// Category is a named output bucket. All conditions must hold for a
// post to qualify; no conditions means every post qualifies.
type Category struct {
	Name       string      `yaml:"name" json:"name"`
	Capacity   int         `yaml:"capacity" json:"capacity"`
	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// Matches reports whether a post qualifies for the category.
func (c Category) Matches(p *ScoredPost) bool {
	for _, cond := range c.Conditions {
		if !cond.matches(p) {
			return false
		}
	}
	return true
}

// Validate checks the category definition.
func (c Category) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("category without a name")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("category %q: capacity must be positive", c.Name)
	}
	for _, cond := range c.Conditions {
		if err := cond.Validate(); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
	}
	return nil
}

// minPercentilePool is the smallest category pool the percentile
// floor applies to.
const minPercentilePool = 20

// SelectOpts controls selection behavior.
type SelectOpts struct {
	// Dedupe collapses a post and its boosts to the highest-scoring
	// instance. On by default in the callers.
	Dedupe bool
	// PercentileFloor drops posts below this score percentile within
	// the category, 0 disables. Driven by the run's tone.
	PercentileFloor float64
}

// Select partitions scored posts into categories, independently and in
// declared order. A post may appear in several categories. Empty input
// yields all categories empty; never an error.
func Select(scored []ScoredPost, categories []Category, opts SelectOpts) []Selection {
	selections := make([]Selection, 0, len(categories))
	for _, cat := range categories {
		selections = append(selections, Selection{
			Category: cat,
			Posts:    selectCategory(scored, cat, opts),
		})
	}
	return selections
}

func selectCategory(scored []ScoredPost, cat Category, opts SelectOpts) []ScoredPost {
	var qualified []ScoredPost
	for i := range scored {
		if cat.Matches(&scored[i]) {
			qualified = append(qualified, scored[i])
		}
	}

	if opts.Dedupe {
		qualified = dedupe(qualified)
	}
	// A percentile gate over a handful of posts would empty the
	// category outright; it only means something on a real pool.
	if opts.PercentileFloor > 0 && len(qualified) >= minPercentilePool {
		qualified = percentileFilter(qualified, opts.PercentileFloor)
	}

	sort.Slice(qualified, func(i, j int) bool {
		return rankLess(&qualified[i], &qualified[j])
	})

	if len(qualified) > cat.Capacity {
		qualified = qualified[:cat.Capacity]
	}
	return qualified
}

// rankLess orders by score descending, then age ascending (newer
// first), then id ascending, so output is reproducible byte for byte.
func rankLess(a, b *ScoredPost) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.AgeHours != b.AgeHours {
		return a.AgeHours < b.AgeHours
	}
	return a.ID < b.ID
}

// dedupe collapses entries sharing an OriginalID to one representative:
// highest score wins, an original beats a boost on ties, and the
// lexicographically smaller id settles what remains.
func dedupe(posts []ScoredPost) []ScoredPost {
	best := make(map[string]int, len(posts))
	order := make([]string, 0, len(posts))

	for i := range posts {
		key := posts[i].OriginalID
		j, seen := best[key]
		if !seen {
			best[key] = i
			order = append(order, key)
			continue
		}
		if dedupePrefer(&posts[i], &posts[j]) {
			best[key] = i
		}
	}

	out := make([]ScoredPost, 0, len(order))
	for _, key := range order {
		out = append(out, posts[best[key]])
	}
	return out
}

func dedupePrefer(candidate, incumbent *ScoredPost) bool {
	if candidate.Score != incumbent.Score {
		return candidate.Score > incumbent.Score
	}
	if candidate.IsBoost != incumbent.IsBoost {
		return !candidate.IsBoost
	}
	return candidate.ID < incumbent.ID
}

// percentileFilter keeps posts whose percentile-of-score within the
// group reaches the floor. Percentile rank follows the mean of the
// strict and weak definitions, matching scipy's percentileofscore.
func percentileFilter(posts []ScoredPost, floor float64) []ScoredPost {
	n := len(posts)
	if n == 0 {
		return posts
	}

	scores := make([]float64, n)
	for i := range posts {
		scores[i] = posts[i].Score
	}
	sort.Float64s(scores)

	var kept []ScoredPost
	for i := range posts {
		below := sort.SearchFloat64s(scores, posts[i].Score)
		belowOrEqual := sort.Search(n, func(j int) bool { return scores[j] > posts[i].Score })
		rank := float64(below+belowOrEqual) / float64(2*n) * 100
		if rank >= floor {
			kept = append(kept, posts[i])
		}
	}
	return kept
}
