package timeline

import (
	"context"
	"fmt"
	"time"
)

// Demo produces canned statuses so a digest can be rendered without
// credentials or network access.
type Demo struct{}

// NewDemo creates the demo source.
func NewDemo() *Demo { return &Demo{} }

func (d *Demo) Name() SourceType { return SourceDemo }

func (d *Demo) Fetch(ctx context.Context, window time.Duration) ([]Status, error) {
	now := time.Now().UTC()

	posts := []Status{
		demoStatus("1001", "alice_dev", "Alice Cooper", now.Add(-1*time.Hour),
			"<p>Just deployed a new feature using <a href=\"#\">#Go</a> and it feels great. Ship small, ship often.</p>",
			25, 45, 12, 250, true),
		demoStatus("1002", "bob_photo", "Bob Wilson", now.Add(-2*time.Hour),
			"<p>Captured this amazing sunset today. Nature never ceases to amaze me.</p>",
			18, 32, 8, 450, true),
		demoStatus("1003", "carol_science", "Dr. Carol Chen", now.Add(-3*time.Hour),
			"<p>New paper out on distributed systems verification. Thread below with the highlights.</p>",
			40, 80, 22, 1200, false),
		demoStatus("1004", "dave_news", "Dave", now.Add(-30*time.Minute),
			"<p>ok</p>", 2, 3, 0, 90, false),
		demoStatus("1005", "erin_art", "Erin", now.Add(-5*time.Hour),
			"<p>Finished a new illustration series, six months in the making.</p>",
			55, 120, 15, 800, true),
	}

	// A fresh account whose post should land in a new-voices bucket.
	young := demoStatus("1006", "newbie", "Fresh Face", now.Add(-90*time.Minute),
		"<p>Hello fediverse! First post here, excited to find my people.</p>",
		6, 14, 9, 20, false)
	young.Account.CreatedAt = now.Add(-10 * 24 * time.Hour)
	posts = append(posts, young)

	// A boost of the illustration post by another account.
	boosted := posts[4]
	boost := Status{
		ID:         "2001",
		CreatedAt:  now.Add(-20 * time.Minute),
		Visibility: "public",
		Reblog:     &boosted,
		Account: Account{
			ID: "user_frank", Acct: "frank", Username: "frank",
			DisplayName: "Frank", FollowersCount: 300,
			URL:       "https://mastodon.example/@frank",
			Avatar:    "https://mastodon.example/avatars/frank.png",
			CreatedAt: now.Add(-2 * 365 * 24 * time.Hour),
		},
	}
	posts = append(posts, boost)

	return posts, nil
}

func demoStatus(id, username, displayName string, createdAt time.Time, content string, boosts, favs, replies, followers int, withMedia bool) Status {
	var media []Media
	if withMedia {
		media = []Media{{
			Type:        "image",
			URL:         fmt.Sprintf("https://picsum.photos/400/300?random=%s", id),
			PreviewURL:  fmt.Sprintf("https://picsum.photos/200/150?random=%s", id),
			Description: "Sample image",
		}}
	}
	return Status{
		ID:               id,
		URL:              fmt.Sprintf("https://mastodon.example/@%s/%s", username, id),
		Content:          content,
		CreatedAt:        createdAt,
		Visibility:       "public",
		ReblogsCount:     boosts,
		FavouritesCount:  favs,
		RepliesCount:     replies,
		MediaAttachments: media,
		Account: Account{
			ID:             "user_" + username,
			Acct:           username,
			Username:       username,
			DisplayName:    displayName,
			URL:            fmt.Sprintf("https://mastodon.example/@%s", username),
			Avatar:         fmt.Sprintf("https://i.pravatar.cc/48?u=%s", username),
			FollowersCount: followers,
			CreatedAt:      createdAt.Add(-3 * 365 * 24 * time.Hour),
		},
	}
}
