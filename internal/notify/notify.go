// Package notify delivers user-visible alerts. All notifiers are
// fire-and-forget: delivery failures are logged, never propagated.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

const appTitle = "Claude Usage Monitor"

// Desktop fires an OS notification: osascript on macOS, notify-send
// elsewhere.
type Desktop struct {
	logger *slog.Logger
	goos   string
	run    func(name string, args ...string) error
}

// NewDesktop returns a notifier for the running platform.
func NewDesktop(logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{
		logger: logger,
		goos:   runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (d *Desktop) Notify(title, body string) {
	name, args := d.command(title, body)
	if name == "" {
		d.logger.Warn("no desktop notifier on this platform", "goos", d.goos)
		return
	}
	if err := d.run(name, args...); err != nil {
		d.logger.Warn("desktop notification failed", "err", err)
	}
}

func (d *Desktop) command(title, body string) (string, []string) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q subtitle %q",
			body, appTitle, title)
		return "osascript", []string{"-e", script}
	case "linux":
		return "notify-send", []string{"--app-name", appTitle, title, body}
	default:
		return "", nil
	}
}

// Ntfy posts alerts to an ntfy topic URL.
type Ntfy struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewNtfy(url string, logger *slog.Logger) *Ntfy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ntfy{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

type ntfyPayload struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

func (n *Ntfy) Notify(title, body string) {
	payload := ntfyPayload{
		Title:    title,
		Message:  body,
		Priority: 4,
		Tags:     []string{"hourglass"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(data))
	if err != nil {
		n.logger.Warn("ntfy post failed", "err", err)
		return
	}
	resp.Body.Close()
}

// Webhook POSTs a small JSON document to an arbitrary endpoint.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhook(url string, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

type webhookPayload struct {
	App       string `json:"app"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

func (w *Webhook) Notify(title, body string) {
	payload := webhookPayload{
		App:       appTitle,
		Title:     title,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(data))
	if err != nil {
		w.logger.Warn("webhook post failed", "err", err)
		return
	}
	resp.Body.Close()
}

// Multi fans one alert out to several notifiers.
type Multi []interface{ Notify(title, body string) }

func (m Multi) Notify(title, body string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, body)
		}
	}
}
