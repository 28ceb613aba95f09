package publish

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestPublish_WritesIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	err := Publish(dir, func(w io.Writer) error {
		_, err := io.WriteString(w, "<html>v1</html>")
		return err
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html>v1</html>" {
		t.Errorf("content = %q", data)
	}
}

func TestPublish_FailedRenderKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(target, []byte("<html>v1</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("template blew up")
	err := Publish(dir, func(w io.Writer) error {
		io.WriteString(w, "<html>half of") // partial output before the failure
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish err = %v, want render error", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html>v1</html>" {
		t.Errorf("previous page clobbered: %q", data)
	}

	// No temp debris left behind either.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want just %s", len(entries), IndexFile)
	}
}

func TestPublish_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	for _, body := range []string{"<html>v1</html>", "<html>v2</html>"} {
		b := body
		if err := Publish(dir, func(w io.Writer) error {
			_, err := io.WriteString(w, b)
			return err
		}); err != nil {
			t.Fatal(err)
		}
	}

	data, _ := os.ReadFile(filepath.Join(dir, IndexFile))
	if string(data) != "<html>v2</html>" {
		t.Errorf("content = %q, want v2", data)
	}
}
