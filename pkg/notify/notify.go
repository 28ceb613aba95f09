// Package notify announces a freshly published digest to configured
// destinations. Delivery is best effort; the digest is already out by
// the time anything here runs.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Highlight is one top post included in the announcement.
type Highlight struct {
	Author  string  `json:"author"`
	Excerpt string  `json:"excerpt"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// Announcement describes a published digest.
type Announcement struct {
	PageURL    string      `json:"page_url"`
	Strategy   string      `json:"strategy"`
	Tone       string      `json:"tone"`
	TotalPosts int         `json:"total_posts"`
	Selected   int         `json:"selected"`
	Highlights []Highlight `json:"highlights"`
}

// Notifier delivers announcements to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, a *Announcement) error
}

// Manager broadcasts announcements to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new announcement manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends an announcement to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, a *Announcement) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func topHighlights(a *Announcement, limit int) []Highlight {
	if len(a.Highlights) < limit {
		limit = len(a.Highlights)
	}
	return a.Highlights[:limit]
}
