// Package digest turns a fetched timeline snapshot into a ranked,
// deduplicated, category-partitioned selection of posts.
//
// Pipeline: statuses -> Normalize -> Score -> Select -> Assemble.
// Every stage is a pure transformation over in-memory data; the fetch
// time is threaded through explicitly so one run sees one clock.
package digest

import (
	"time"

	"github.com/lmeyer/fedidigest/pkg/timeline"
)

// Engagement holds a post's interaction counters.
type Engagement struct {
	Favorites int `json:"favorites"`
	Boosts    int `json:"boosts"`
	Replies   int `json:"replies"`
}

// Post is the normalized form of a timeline status. Immutable once
// created; derived fields are computed against the run's fetch time.
type Post struct {
	ID         string `json:"id"`
	OriginalID string `json:"original_id"` // boosted post's id for boosts, else ID

	Author          string  `json:"author"`
	AuthorFollowers int     `json:"author_followers"`
	AuthorAgeHours  float64 `json:"author_age_hours"`

	AgeHours   float64    `json:"age_hours"` // never negative
	Engagement Engagement `json:"engagement"`

	IsBoost       bool   `json:"is_boost"`
	IsReply       bool   `json:"is_reply"`
	HasMedia      bool   `json:"has_media"`
	ContentLength int    `json:"content_length"` // runes after stripping markup
	Language      string `json:"language"`

	// Status is the underlying record the renderer displays. For a
	// boost this is the boosted post, not the empty wrapper.
	Status timeline.Status `json:"-"`
}

// ScoredPost is a Post with the weight a strategy assigned it.
type ScoredPost struct {
	Post
	Score    float64 `json:"score"`
	Strategy string  `json:"strategy"`
}

// Selection is one category's ranked output.
type Selection struct {
	Category Category     `json:"category"`
	Posts    []ScoredPost `json:"posts"`
}

// Meta is per-run information attached for the renderer's header.
type Meta struct {
	FetchedAt  time.Time     `json:"fetched_at"`
	Strategy   string        `json:"strategy"`
	Tone       string        `json:"tone"`
	TotalPosts int           `json:"total_posts"` // posts considered before selection
	Window     time.Duration `json:"window"`
}

// Digest is the final document model handed to the renderer. Built
// once per run, read-only afterwards, never persisted by the core.
type Digest struct {
	Meta       Meta        `json:"meta"`
	Selections []Selection `json:"selections"`
}
