package digest

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/lmeyer/fedidigest/pkg/timeline"
)

// Normalize converts raw statuses into Posts, deriving ages against
// fetchTime. Malformed statuses are dropped and reported in the second
// return value as *MalformedPostError; they never abort the run.
func Normalize(statuses []timeline.Status, fetchTime time.Time) ([]Post, []error) {
	posts := make([]Post, 0, len(statuses))
	var dropped []error

	for i := range statuses {
		post, err := normalizeOne(&statuses[i], fetchTime)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		posts = append(posts, post)
	}
	return posts, dropped
}

func normalizeOne(s *timeline.Status, fetchTime time.Time) (Post, error) {
	isBoost := s.Reblog != nil
	content := s
	if isBoost {
		content = s.Reblog
	}

	switch {
	case s.ID == "":
		return Post{}, &MalformedPostError{Field: "id"}
	case content.Account.Acct == "":
		return Post{}, &MalformedPostError{ID: s.ID, Field: "author"}
	case content.CreatedAt.IsZero():
		return Post{}, &MalformedPostError{ID: s.ID, Field: "created_at"}
	}

	originalID := s.ID
	if isBoost {
		if content.ID == "" {
			return Post{}, &MalformedPostError{ID: s.ID, Field: "reblog.id"}
		}
		originalID = content.ID
	}

	return Post{
		ID:              s.ID,
		OriginalID:      originalID,
		Author:          content.Account.Acct,
		AuthorFollowers: content.Account.FollowersCount,
		AuthorAgeHours:  hoursSince(content.Account.CreatedAt, fetchTime),
		AgeHours:        hoursSince(content.CreatedAt, fetchTime),
		Engagement: Engagement{
			Favorites: content.FavouritesCount,
			Boosts:    content.ReblogsCount,
			Replies:   content.RepliesCount,
		},
		IsBoost:       isBoost,
		IsReply:       content.InReplyToID != "",
		HasMedia:      len(content.MediaAttachments) > 0,
		ContentLength: contentLength(content.Content),
		Language:      content.Language,
		Status:        *content,
	}, nil
}

// hoursSince clamps at zero so clock skew between the instance and the
// fetch never produces a negative age.
func hoursSince(t, ref time.Time) float64 {
	h := ref.Sub(t).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// contentLength counts runes of the text left after stripping markup.
func contentLength(html string) int {
	text := StripHTML(html)
	return utf8.RuneCountInString(text)
}

// StripHTML reduces a fragment of status HTML to its plain text.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable markup still counts as text.
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}
