package digest

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned when a strategy name does not resolve.
// Surfaced at configuration time, before any post is processed.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ErrUnknownTone is returned for an unrecognized tone name.
var ErrUnknownTone = errors.New("unknown tone")

// MalformedPostError reports a status missing a required field. The
// post is dropped with a warning; the run continues.
type MalformedPostError struct {
	ID    string // may be empty when the id itself is missing
	Field string
}

func (e *MalformedPostError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed post: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed post %s: missing %s", e.ID, e.Field)
}
