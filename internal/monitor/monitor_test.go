package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fetchResult struct {
	snap *UsageSnapshot
	err  error
}

type fakeFetcher struct {
	results []fetchResult
	idx     int
}

func (f *fakeFetcher) FetchUsage(ctx context.Context) (*UsageSnapshot, error) {
	i := f.idx
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.idx++
	r := f.results[i]
	return r.snap, r.err
}

type panickyFetcher struct{ calls int }

func (f *panickyFetcher) FetchUsage(ctx context.Context) (*UsageSnapshot, error) {
	f.calls++
	panic("boom")
}

type fakeDisplay struct {
	renders []Render
}

func (d *fakeDisplay) Update(r Render) { d.renders = append(d.renders, r) }

func (d *fakeDisplay) last(t *testing.T) Render {
	t.Helper()
	if len(d.renders) == 0 {
		t.Fatal("no renders recorded")
	}
	return d.renders[len(d.renders)-1]
}

func testSnapshot() *UsageSnapshot {
	return &UsageSnapshot{
		FiveHourUtilization: 0.72,
		FiveHourResetsAt:    "2026-02-01T14:00:00Z",
		WeeklyUtilization:   0.40,
		WeeklyResetsAt:      "2026-02-03T00:00:00Z",
		FetchedAt:           time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestMonitor(fetcher UsageFetcher, notifier Notifier, display Display) *UsageMonitor {
	tn := NewThresholdNotifier(DefaultConfig(), notifier, discardLogger())
	m := New(DefaultConfig(), fetcher, tn, display, nil, discardLogger())
	m.SetNow(func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) })
	return m
}

func TestRefreshConnectedEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{{snap: testSnapshot()}}}
	notifier := &fakeNotifier{}
	display := &fakeDisplay{}
	m := newTestMonitor(fetcher, notifier, display)

	m.refresh(context.Background())

	r := display.last(t)
	if r.State != StateConnected {
		t.Fatalf("state = %q, want %q", r.State, StateConnected)
	}
	if r.FiveHourLine != "5h: 72% used • resets in 2h 0m" {
		t.Errorf("FiveHourLine = %q", r.FiveHourLine)
	}
	if r.WeeklyLine != "Weekly: 40% used • resets in 1d" {
		t.Errorf("WeeklyLine = %q", r.WeeklyLine)
	}
	if r.UpdatedLine != "Updated: 12:00" {
		t.Errorf("UpdatedLine = %q", r.UpdatedLine)
	}
	// 0.72 crosses warning only on the 5h metric; weekly stays green.
	if r.Title != "🟡🟢 72%" {
		t.Errorf("Title = %q, want %q", r.Title, "🟡🟢 72%")
	}

	if got := notifier.count(); got != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", got)
	}
	if notifier.calls[0].title != "Usage Warning" {
		t.Errorf("title = %q, want %q", notifier.calls[0].title, "Usage Warning")
	}
	if !strings.Contains(notifier.calls[0].body, "5h limit") {
		t.Errorf("body = %q, want mention of 5h limit", notifier.calls[0].body)
	}
}

func TestRefreshCacheFallbackThenHardError(t *testing.T) {
	results := []fetchResult{{snap: testSnapshot()}}
	for i := 0; i < 6; i++ {
		results = append(results, fetchResult{err: ErrNetwork})
	}
	fetcher := &fakeFetcher{results: results}
	display := &fakeDisplay{}
	m := newTestMonitor(fetcher, &fakeNotifier{}, display)

	m.refresh(context.Background()) // connected
	if r := display.last(t); r.State != StateConnected {
		t.Fatalf("state = %q, want connected", r.State)
	}

	// Failures 1 through 5 ride on the cache (prior failures 0..4 < 5).
	for i := 1; i <= 5; i++ {
		m.refresh(context.Background())
		r := display.last(t)
		if r.State != StateCached {
			t.Fatalf("failure %d: state = %q, want cached", i, r.State)
		}
		if want := fmt.Sprintf("Status: retrying (%d)", i); r.StatusLine != want {
			t.Errorf("failure %d: StatusLine = %q, want %q", i, r.StatusLine, want)
		}
		if r.FivePct != 0.72 {
			t.Errorf("failure %d: FivePct = %v, want cached 0.72", i, r.FivePct)
		}
	}

	// Sixth failure: prior count is 5, the cache is no longer trusted.
	m.refresh(context.Background())
	r := display.last(t)
	if r.State != StateError {
		t.Fatalf("state = %q, want error", r.State)
	}
	if !strings.HasPrefix(r.Title, "⚠️") {
		t.Errorf("Title = %q, want warning glyph prefix", r.Title)
	}
	if r.FivePct != 0.72 {
		t.Errorf("error state should keep last-known percentages, got %v", r.FivePct)
	}
}

func TestRefreshErrorWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{{err: ErrNetwork}}}
	notifier := &fakeNotifier{}
	display := &fakeDisplay{}
	m := newTestMonitor(fetcher, notifier, display)

	m.refresh(context.Background())

	r := display.last(t)
	if r.State != StateError {
		t.Fatalf("state = %q, want error", r.State)
	}
	if r.Title != "⚠️" {
		t.Errorf("Title = %q, want bare warning glyph", r.Title)
	}
	if r.FiveHourLine != "" {
		t.Errorf("FiveHourLine = %q, want empty without cache", r.FiveHourLine)
	}
	if got := notifier.count(); got != 0 {
		t.Errorf("error state must not run threshold checks, got %d notifications", got)
	}
}

func TestManualRefreshResetsFailures(t *testing.T) {
	results := []fetchResult{{snap: testSnapshot()}}
	for i := 0; i < 10; i++ {
		results = append(results, fetchResult{err: ErrServer})
	}
	fetcher := &fakeFetcher{results: results}
	display := &fakeDisplay{}
	m := newTestMonitor(fetcher, &fakeNotifier{}, display)

	m.refresh(context.Background())
	for i := 0; i < 6; i++ {
		m.refresh(context.Background())
	}
	if r := display.last(t); r.State != StateError {
		t.Fatalf("state = %q, want error after exhaustion", r.State)
	}

	// Manual refresh zeroes the failure count, so the cache gets another
	// chance even though the fetch still fails.
	m.Refresh(context.Background())
	r := display.last(t)
	if r.State != StateCached {
		t.Errorf("state after manual refresh = %q, want cached", r.State)
	}
	if r.StatusLine != "Status: retrying (1)" {
		t.Errorf("StatusLine = %q, want retrying (1)", r.StatusLine)
	}
}

func TestRefreshSurvivesPanic(t *testing.T) {
	fetcher := &panickyFetcher{}
	display := &fakeDisplay{}
	m := newTestMonitor(fetcher, &fakeNotifier{}, display)

	m.refresh(context.Background())
	r := display.last(t)
	if r.State != StateError {
		t.Fatalf("state = %q, want error after internal fault", r.State)
	}
	if r.StatusLine != "Status: internal error" {
		t.Errorf("StatusLine = %q", r.StatusLine)
	}

	// The loop must keep working on the next cycle.
	m.refresh(context.Background())
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.calls)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{{snap: testSnapshot()}}}
	m := newTestMonitor(fetcher, &fakeNotifier{}, &fakeDisplay{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestGlyphTiers(t *testing.T) {
	m := newTestMonitor(&fakeFetcher{results: []fetchResult{{err: ErrNetwork}}}, nil, nil)

	tests := []struct {
		pct  float64
		want string
	}{
		{0.10, "🟢"},
		{0.69, "🟢"},
		{0.70, "🟡"},
		{0.85, "🟠"},
		{0.95, "🔴"},
		{1.20, "🔴"}, // out-of-range passthrough
	}
	for _, tt := range tests {
		if got := m.glyph(tt.pct); got != tt.want {
			t.Errorf("glyph(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
