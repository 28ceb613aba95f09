package timeline

import "strings"

// Filter decides which timeline statuses are eligible for the digest.
// It drops the account's own posts, posts already interacted with, and
// posts by accounts that opted out of indexing.
type Filter struct {
	selfAcct string
}

// NewFilter creates a filter for the authenticated account handle.
func NewFilter(selfAcct string) *Filter {
	return &Filter{selfAcct: strings.ToLower(strings.TrimSpace(selfAcct))}
}

// Keep reports whether a status should be considered for scoring.
func (f *Filter) Keep(s *Status) bool {
	if s.Visibility != "public" {
		return false
	}
	if s.Reblogged || s.Favourited || s.Bookmarked {
		return false
	}

	// A boost is judged by the account that wrote the content.
	content := s
	if s.Reblog != nil {
		content = s.Reblog
		if content.Reblogged || content.Favourited || content.Bookmarked {
			return false
		}
	}

	acct := strings.ToLower(strings.TrimSpace(content.Account.Acct))
	if f.selfAcct != "" && acct == f.selfAcct {
		return false
	}
	if content.Account.NoIndex {
		return false
	}

	bio := strings.ToLower(content.Account.Note)
	if strings.Contains(bio, "#noindex") || strings.Contains(bio, "#nobot") {
		return false
	}
	return true
}

// Apply returns the statuses that pass the filter, preserving order.
// Exact repeats across overlapping pages are dropped; a post and a
// boost of it both survive, the selector picks one later.
func (f *Filter) Apply(statuses []Status) []Status {
	seen := make(map[string]bool, len(statuses))
	var kept []Status
	for i := range statuses {
		s := &statuses[i]
		if !f.Keep(s) {
			continue
		}
		if s.ID != "" {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
		}
		kept = append(kept, *s)
	}
	return kept
}
