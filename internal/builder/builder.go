// Package builder runs one digest build end to end: fetch, filter,
// normalize, score, select, render, publish, archive. Each run builds
// fresh state and discards it; nothing is shared between runs.
package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmeyer/fedidigest/internal/config"
	"github.com/lmeyer/fedidigest/internal/store"
	"github.com/lmeyer/fedidigest/pkg/digest"
	"github.com/lmeyer/fedidigest/pkg/notify"
	"github.com/lmeyer/fedidigest/pkg/publish"
	"github.com/lmeyer/fedidigest/pkg/render"
	"github.com/lmeyer/fedidigest/pkg/timeline"
)

// Builder assembles and publishes digests.
type Builder struct {
	cfg      *config.Config
	sources  []timeline.Source
	filter   *timeline.Filter
	renderer *render.Renderer
	archive  store.Store // nil = no archiving
	notifier *notify.Manager

	strategy digest.Strategy
	tone     digest.Tone
	tuning   digest.Tuning
}

// New resolves strategy and tone from configuration. Unknown names
// fail here, before anything is fetched or scored.
func New(cfg *config.Config, sources []timeline.Source, filter *timeline.Filter, renderer *render.Renderer, archive store.Store, notifier *notify.Manager) (*Builder, error) {
	strategy, err := digest.ParseStrategy(cfg.Digest.Strategy)
	if err != nil {
		return nil, err
	}
	tone, err := digest.ParseTone(cfg.Digest.Tone)
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:      cfg,
		sources:  sources,
		filter:   filter,
		renderer: renderer,
		archive:  archive,
		notifier: notifier,
		strategy: strategy,
		tone:     tone,
		tuning:   tone.Apply(cfg.Tuning),
	}, nil
}

// Build fetches one timeline snapshot, assembles the digest, and
// publishes it. The previously published page survives any failure.
func (b *Builder) Build(ctx context.Context) (*digest.Digest, error) {
	window := time.Duration(b.cfg.Mastodon.Hours) * time.Hour
	fetchTime := time.Now().UTC()

	var statuses []timeline.Status
	for _, src := range b.sources {
		fetched, err := src.Fetch(ctx, window)
		if err != nil {
			// One dead source doesn't kill the run.
			slog.Warn("source fetch failed", "source", src.Name(), "err", err)
			continue
		}
		slog.Info("fetched", "source", src.Name(), "statuses", len(fetched))
		statuses = append(statuses, fetched...)
	}

	if b.filter != nil {
		statuses = b.filter.Apply(statuses)
	}

	posts, dropped := digest.Normalize(statuses, fetchTime)
	for _, err := range dropped {
		slog.Warn("dropped post", "err", err)
	}

	scored, err := digest.Score(posts, b.strategy, b.tuning)
	if err != nil {
		return nil, fmt.Errorf("score posts: %w", err)
	}

	selections := digest.Select(scored, b.cfg.Digest.Categories, digest.SelectOpts{
		Dedupe:          b.cfg.Digest.DedupeEnabled(),
		PercentileFloor: b.tone.Percentile(),
	})

	d := digest.Assemble(selections, digest.Meta{
		FetchedAt:  fetchTime,
		Strategy:   b.strategy.String(),
		Tone:       b.tone.String(),
		TotalPosts: len(posts),
		Window:     window,
	})

	if err := publish.Publish(b.cfg.Output.Dir, func(w io.Writer) error {
		return b.renderer.Render(w, d)
	}); err != nil {
		return nil, fmt.Errorf("publish digest: %w", err)
	}

	if b.archive != nil {
		if _, err := b.archive.SaveRun(ctx, d); err != nil {
			// The page is already out; archiving is best effort.
			slog.Warn("archive run failed", "err", err)
		}
	}

	if b.notifier != nil && b.notifier.HasNotifiers() {
		if err := b.notifier.Broadcast(ctx, b.announcement(d)); err != nil {
			slog.Warn("announce digest failed", "err", err)
		}
	}

	b.logPublished(d)
	return d, nil
}

// announcement summarizes the run, leading with the first category's
// top entries.
func (b *Builder) announcement(d *digest.Digest) *notify.Announcement {
	a := &notify.Announcement{
		PageURL:    b.cfg.Notify.PageURL,
		Strategy:   d.Meta.Strategy,
		Tone:       d.Meta.Tone,
		TotalPosts: d.Meta.TotalPosts,
		Selected:   d.PostCount(),
	}
	for _, sel := range d.Selections {
		for _, p := range sel.Posts {
			a.Highlights = append(a.Highlights, notify.Highlight{
				Author:  p.Author,
				Excerpt: truncateExcerpt(digest.StripHTML(p.Status.Content)),
				URL:     p.Status.URL,
				Score:   p.Score,
			})
		}
		if len(a.Highlights) > 0 {
			break
		}
	}
	return a
}

func truncateExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= 80 {
		return text
	}
	return string(runes[:80]) + "..."
}

func (b *Builder) logPublished(d *digest.Digest) {
	slog.Info("digest published",
		"dir", b.cfg.Output.Dir,
		"posts", d.Meta.TotalPosts,
		"selected", d.PostCount(),
		"strategy", d.Meta.Strategy,
		"tone", d.Meta.Tone)
}
