package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDesktopCommandDarwin(t *testing.T) {
	d := NewDesktop(nil)
	d.goos = "darwin"

	name, args := d.command("Usage Warning", "You've reached 72% of your 5h limit.")
	if name != "osascript" {
		t.Fatalf("command = %q, want osascript", name)
	}
	if len(args) != 2 || args[0] != "-e" {
		t.Fatalf("args = %v", args)
	}
	for _, want := range []string{"Usage Warning", "72%", "Claude Usage Monitor"} {
		if !strings.Contains(args[1], want) {
			t.Errorf("script %q missing %q", args[1], want)
		}
	}
}

func TestDesktopCommandLinux(t *testing.T) {
	d := NewDesktop(nil)
	d.goos = "linux"

	name, args := d.command("Usage High", "body")
	if name != "notify-send" {
		t.Fatalf("command = %q, want notify-send", name)
	}
	if args[len(args)-2] != "Usage High" || args[len(args)-1] != "body" {
		t.Errorf("args = %v", args)
	}
}

func TestDesktopUnknownPlatformIsSilent(t *testing.T) {
	d := NewDesktop(nil)
	d.goos = "plan9"
	ran := false
	d.run = func(string, ...string) error { ran = true; return nil }

	d.Notify("t", "b")
	if ran {
		t.Error("expected no command on unsupported platform")
	}
}

func TestNtfyNotify(t *testing.T) {
	var got ntfyPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL, nil)
	n.Notify("⚠️ Usage Critical!", "Consider pausing.")

	if got.Title != "⚠️ Usage Critical!" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Message != "Consider pausing." {
		t.Errorf("message = %q", got.Message)
	}
	if got.Priority != 4 {
		t.Errorf("priority = %d, want 4", got.Priority)
	}
}

func TestWebhookNotify(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, nil)
	w.Notify("Usage Warning", "body text")

	if got.App != "Claude Usage Monitor" {
		t.Errorf("app = %q", got.App)
	}
	if got.Title != "Usage Warning" || got.Body != "body text" {
		t.Errorf("payload = %+v", got)
	}
	if got.Timestamp == "" {
		t.Error("timestamp not set")
	}
}

type countingNotifier struct{ calls int }

func (c *countingNotifier) Notify(title, body string) { c.calls++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	m := Multi{a, nil, b}
	m.Notify("t", "b")
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d, want 1, 1", a.calls, b.calls)
	}
}
