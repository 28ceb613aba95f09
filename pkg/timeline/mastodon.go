package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const timelineCap = 1000 // hard cap on statuses per fetch, across pages

// Mastodon fetches the authenticated account's home timeline.
type Mastodon struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewMastodon creates a home-timeline source for the given instance.
func NewMastodon(baseURL, token string) *Mastodon {
	return &Mastodon{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

func (m *Mastodon) Name() SourceType { return SourceMastodon }

// Me returns the handle of the authenticated account.
func (m *Mastodon) Me(ctx context.Context) (string, error) {
	var account Account
	if err := m.get(ctx, m.baseURL+"/api/v1/accounts/verify_credentials", &account, nil); err != nil {
		return "", fmt.Errorf("verify credentials: %w", err)
	}
	return account.Acct, nil
}

// Fetch pages backwards through the home timeline until it runs past
// the window or hits the timeline cap. Statuses come back newest first.
func (m *Mastodon) Fetch(ctx context.Context, window time.Duration) ([]Status, error) {
	cutoff := time.Now().UTC().Add(-window)

	var all []Status
	next := m.baseURL + "/api/v1/timelines/home?limit=40"

	for next != "" && len(all) < timelineCap {
		var page []Status
		var link string
		if err := m.get(ctx, next, &page, &link); err != nil {
			return nil, fmt.Errorf("fetch home timeline: %w", err)
		}
		if len(page) == 0 {
			break
		}

		done := false
		for _, s := range page {
			if s.CreatedAt.Before(cutoff) {
				done = true
				break
			}
			all = append(all, s)
		}
		if done {
			break
		}
		next = nextPageURL(link)
	}

	if len(all) > timelineCap {
		all = all[:timelineCap]
	}
	return all, nil
}

func (m *Mastodon) get(ctx context.Context, rawURL string, out any, linkHeader *string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request %s: %w", rawURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("User-Agent", "fedidigest/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)
	}

	if linkHeader != nil {
		*linkHeader = resp.Header.Get("Link")
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageURL extracts the rel="next" URL from a Link header.
// Mastodon's "next" page is the older one.
func nextPageURL(link string) string {
	match := linkNextRe.FindStringSubmatch(link)
	if match == nil {
		return ""
	}
	if _, err := url.Parse(match[1]); err != nil {
		return ""
	}
	return match[1]
}
