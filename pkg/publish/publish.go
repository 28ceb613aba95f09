// Package publish writes rendered output into the publication
// directory. The write is atomic: a failing render leaves whatever was
// published before completely untouched.
package publish

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IndexFile is the name the digest page is published under.
const IndexFile = "index.html"

// Publish renders into a temp file next to the target and renames it
// over index.html only after the render succeeded.
func Publish(dir string, render func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".digest-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := render(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	target := filepath.Join(dir, IndexFile)
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish %s: %w", target, err)
	}
	return nil
}
