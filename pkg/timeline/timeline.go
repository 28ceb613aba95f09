package timeline

import (
	"context"
	"time"
)

// SourceType identifies where a status came from.
type SourceType string

const (
	SourceMastodon SourceType = "mastodon"
	SourceRSS      SourceType = "rss"
	SourceDemo     SourceType = "demo"
)

// Emoji is a custom emoji usable in display names and content.
type Emoji struct {
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
}

// Account is the author of a status.
type Account struct {
	ID             string    `json:"id"`
	Acct           string    `json:"acct"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	URL            string    `json:"url"`
	Avatar         string    `json:"avatar"`
	Note           string    `json:"note"`
	FollowersCount int       `json:"followers_count"`
	CreatedAt      time.Time `json:"created_at"`
	NoIndex        bool      `json:"noindex"`
	Emojis         []Emoji   `json:"emojis"`
}

// Media is a single attachment on a status.
type Media struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	PreviewURL  string `json:"preview_url"`
	Description string `json:"description"`
}

// Status is a raw timeline post as the Mastodon API returns it.
// A boost carries the boosted post in Reblog with no content of its own.
type Status struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	Visibility       string    `json:"visibility"`
	Language         string    `json:"language"`
	InReplyToID      string    `json:"in_reply_to_id"`
	Reblog           *Status   `json:"reblog"`
	RepliesCount     int       `json:"replies_count"`
	ReblogsCount     int       `json:"reblogs_count"`
	FavouritesCount  int       `json:"favourites_count"`
	Reblogged        bool      `json:"reblogged"`
	Favourited       bool      `json:"favourited"`
	Bookmarked       bool      `json:"bookmarked"`
	MediaAttachments []Media   `json:"media_attachments"`
	Account          Account   `json:"account"`
}

// Source is the interface every timeline fetcher must implement.
// Fetch returns statuses no older than the given window, newest first.
type Source interface {
	Name() SourceType
	Fetch(ctx context.Context, window time.Duration) ([]Status, error)
}
