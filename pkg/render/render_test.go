package render

import (
	"strings"
	"testing"
	"time"

	"github.com/lmeyer/fedidigest/pkg/digest"
	"github.com/lmeyer/fedidigest/pkg/timeline"
)

func sampleDigest() *digest.Digest {
	post := digest.ScoredPost{
		Post: digest.Post{
			ID:       "110001",
			Author:   "ada@example.social",
			AgeHours: 3,
			Status: timeline.Status{
				ID:      "110001",
				URL:     "https://example.social/@ada/110001",
				Content: "<p>The garden is <b>blooming</b></p>",
				Account: timeline.Account{
					Acct:        "ada@example.social",
					DisplayName: "Ada",
				},
				MediaAttachments: []timeline.Media{
					{Type: "image", URL: "https://files.example/pic.jpg", Description: "a rose"},
				},
			},
		},
		Score:    42.5,
		Strategy: "ExtendedWeighted",
	}

	return digest.Assemble([]digest.Selection{
		{Category: digest.Category{Name: "Highlights", Capacity: 12}, Posts: []digest.ScoredPost{post}},
		{Category: digest.Category{Name: "With Media", Capacity: 6}},
	}, digest.Meta{
		FetchedAt:  time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		Strategy:   "ExtendedWeighted",
		Tone:       "normal",
		TotalPosts: 57,
		Window:     12 * time.Hour,
	})
}

func TestRender_Page(t *testing.T) {
	r, err := New("https://home.example/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var b strings.Builder
	if err := r.Render(&b, sampleDigest()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := b.String()

	for _, want := range []string{
		"Highlights",
		"ada@example.social",
		// Status HTML passes through unescaped.
		"<b>blooming</b>",
		// Image attachment rendered.
		`<img src="https://files.example/pic.jpg"`,
		// Link back to the original instance.
		"https://example.social/@ada/110001",
		// Home-instance link with the trailing slash trimmed off base.
		"https://home.example/@ada@example.social/110001",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "&lt;b&gt;") {
		t.Error("status HTML was double escaped")
	}
}

func TestRender_EmptyDigest(t *testing.T) {
	r, err := New("https://home.example")
	if err != nil {
		t.Fatal(err)
	}

	d := digest.Assemble([]digest.Selection{{Category: digest.Category{Name: "Highlights", Capacity: 12}}}, digest.Meta{
		FetchedAt: time.Now(),
		Strategy:  "Simple",
		Tone:      "lax",
	})

	var b strings.Builder
	if err := r.Render(&b, d); err != nil {
		t.Fatalf("empty digest should still render: %v", err)
	}
	if !strings.Contains(b.String(), "Highlights") {
		t.Error("empty category heading missing")
	}
}

func TestDisplayNameEmoji(t *testing.T) {
	got := displayNameHTML(timeline.Account{
		DisplayName: "Ada :verified: <script>",
		Emojis: []timeline.Emoji{
			{Shortcode: "verified", URL: "https://files.example/verified.png"},
		},
	})

	s := string(got)
	if !strings.Contains(s, `src="https://files.example/verified.png"`) {
		t.Errorf("emoji not substituted: %q", s)
	}
	if strings.Contains(s, "<script>") {
		t.Errorf("display name not escaped: %q", s)
	}
}

func TestMediaHTML_Types(t *testing.T) {
	p := digest.ScoredPost{Post: digest.Post{Status: timeline.Status{
		MediaAttachments: []timeline.Media{
			{Type: "image", URL: "https://files.example/a.jpg"},
			{Type: "video", URL: "https://files.example/b.mp4"},
			{Type: "gifv", URL: "https://files.example/c.mp4"},
			{Type: "audio", URL: "https://files.example/d.ogg"}, // unsupported, skipped
		},
	}}}

	s := string(mediaHTML(p))
	if strings.Count(s, "<div class=\"media\">") != 3 {
		t.Errorf("media blocks = %d, want 3: %q", strings.Count(s, "<div class=\"media\">"), s)
	}
	if !strings.Contains(s, "autoplay loop muted") {
		t.Error("gifv should render as looping muted video")
	}
	if strings.Contains(s, "d.ogg") {
		t.Error("unsupported attachment type should be skipped")
	}
}
