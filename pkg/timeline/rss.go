package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ProfileFeed is a public Mastodon profile followed by RSS instead of
// the API, e.g. https://hachyderm.io/@someone.rss.
type ProfileFeed struct {
	Name string
	URL  string
}

// RSS blends public profile feeds into a run. Feed entries carry no
// engagement counters, so they rank on recency alone.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []ProfileFeed
}

// NewRSS creates a profile feed source.
func NewRSS(feeds []ProfileFeed) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

func (r *RSS) Name() SourceType { return SourceRSS }

func (r *RSS) Fetch(ctx context.Context, window time.Duration) ([]Status, error) {
	var all []Status
	for _, feed := range r.feeds {
		statuses, err := r.fetchFeed(ctx, feed, window)
		if err != nil {
			slog.Warn("profile feed error", "feed", feed.Name, "err", err)
			continue
		}
		all = append(all, statuses...)
	}
	return all, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feed ProfileFeed, window time.Duration) ([]Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "fedidigest/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	cutoff := time.Now().UTC().Add(-window)
	acct := acctFromFeedURL(feed.URL)

	var statuses []Status
	for _, entry := range parsed.Items {
		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		var media []Media
		if entry.Image != nil {
			media = append(media, Media{Type: "image", URL: entry.Image.URL})
		}

		statuses = append(statuses, Status{
			ID:         fmt.Sprintf("rss:%s:%s", feed.Name, entry.GUID),
			URL:        entry.Link,
			Content:    entry.Description,
			CreatedAt:  published,
			Visibility: "public",
			Account: Account{
				ID:          "rss:" + feed.Name,
				Acct:        acct,
				Username:    acct,
				DisplayName: firstNonEmpty(parsed.Title, feed.Name),
				URL:         parsed.Link,
				// Feeds expose no follower count; 1 keeps the
				// inverse-follower weight neutral instead of zeroing.
				FollowersCount: 1,
			},
			MediaAttachments: media,
		})
	}
	return statuses, nil
}

// acctFromFeedURL turns https://host/@user.rss into user@host.
func acctFromFeedURL(feedURL string) string {
	trimmed := strings.TrimSuffix(feedURL, ".rss")
	at := strings.LastIndex(trimmed, "/@")
	if at < 0 {
		return trimmed
	}
	user := trimmed[at+2:]
	host := strings.TrimPrefix(trimmed[:at], "https://")
	host = strings.TrimPrefix(host, "http://")
	return user + "@" + host
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
