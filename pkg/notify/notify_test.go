package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sampleAnnouncement() *Announcement {
	return &Announcement{
		PageURL:    "https://digest.example/",
		Strategy:   "ExtendedWeighted",
		Tone:       "normal",
		TotalPosts: 57,
		Selected:   14,
		Highlights: []Highlight{
			{Author: "ada@example.social", Excerpt: "morning glory", URL: "https://example.social/@ada/101", Score: 9.5},
		},
	}
}

func TestWebhookSignsPayload(t *testing.T) {
	const secret = "s3cret"
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, secret)
	if err := wh.Send(context.Background(), sampleAnnouncement()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var decoded Announcement
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if decoded.PageURL != "https://digest.example/" || len(decoded.Highlights) != 1 {
		t.Errorf("payload = %+v", decoded)
	}
}

func TestWebhookRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "")
	if err := wh.Send(context.Background(), sampleAnnouncement()); err == nil {
		t.Error("Send should fail on a 5xx response")
	}
}

type fakeNotifier struct {
	name string
	err  error
	sent int
}

func (f *fakeNotifier) Name() string { return f.name }
func (f *fakeNotifier) Send(ctx context.Context, a *Announcement) error {
	f.sent++
	return f.err
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	bad := &fakeNotifier{name: "slack", err: errors.New("rate limited")}
	good := &fakeNotifier{name: "discord"}
	m := NewManager([]Notifier{bad, good})

	err := m.Broadcast(context.Background(), sampleAnnouncement())
	if err == nil {
		t.Fatal("Broadcast should report the failed notifier")
	}
	if good.sent != 1 {
		t.Error("healthy notifier skipped after an earlier failure")
	}
	if !errors.Is(err, bad.err) {
		t.Errorf("joined error %v does not wrap the cause", err)
	}
}
