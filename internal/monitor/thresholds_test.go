package monitor

import (
	"sync"
	"testing"
)

type notification struct {
	title string
	body  string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (f *fakeNotifier) Notify(title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notification{title, body})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestThresholds(n Notifier) *ThresholdNotifier {
	return NewThresholdNotifier(DefaultConfig(), n, discardLogger())
}

func TestCheckFiresEachLevelOnce(t *testing.T) {
	notifier := &fakeNotifier{}
	tn := newTestThresholds(notifier)

	tn.Check("5h limit", 0.96)
	if got := notifier.count(); got != 3 {
		t.Fatalf("expected 3 notifications after crossing critical, got %d", got)
	}

	// Second identical call must be a no-op for already-fired levels.
	tn.Check("5h limit", 0.96)
	if got := notifier.count(); got != 3 {
		t.Errorf("expected check to be idempotent, got %d notifications", got)
	}

	titles := map[string]bool{}
	for _, c := range notifier.calls {
		titles[c.title] = true
	}
	for _, want := range []string{"Usage Warning", "Usage High", "⚠️ Usage Critical!"} {
		if !titles[want] {
			t.Errorf("missing notification title %q", want)
		}
	}
}

func TestCheckWarningOnly(t *testing.T) {
	notifier := &fakeNotifier{}
	tn := newTestThresholds(notifier)

	tn.Check("5h limit", 0.72)
	if got := notifier.count(); got != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", got)
	}
	if notifier.calls[0].title != "Usage Warning" {
		t.Errorf("title = %q, want %q", notifier.calls[0].title, "Usage Warning")
	}
	if want := "You've reached 72% of your 5h limit."; notifier.calls[0].body != want {
		t.Errorf("body = %q, want %q", notifier.calls[0].body, want)
	}
}

func TestHysteresisRoundTrip(t *testing.T) {
	notifier := &fakeNotifier{}
	tn := newTestThresholds(notifier)

	tn.Check("5h limit", 0.96) // fires all three
	tn.Check("5h limit", 0.50) // drops below warning, clears fired set
	tn.Check("5h limit", 0.72) // warning must fire again

	if got := notifier.count(); got != 4 {
		t.Fatalf("expected 4 notifications after round trip, got %d", got)
	}
	if last := notifier.calls[3]; last.title != "Usage Warning" {
		t.Errorf("re-fired title = %q, want %q", last.title, "Usage Warning")
	}
}

func TestClearIsScopedToMetric(t *testing.T) {
	notifier := &fakeNotifier{}
	tn := newTestThresholds(notifier)

	tn.Check("5h limit", 0.96)     // 3 notifications
	tn.Check("Weekly limit", 0.90) // warning + danger
	if got := notifier.count(); got != 5 {
		t.Fatalf("expected 5 notifications, got %d", got)
	}

	// Dropping the 5h metric must not re-arm the weekly entries.
	tn.Check("5h limit", 0.10)
	tn.Check("Weekly limit", 0.90)
	if got := notifier.count(); got != 5 {
		t.Errorf("weekly entries were cleared by the 5h drop, got %d notifications", got)
	}

	// But the 5h entries are re-armed.
	tn.Check("5h limit", 0.72)
	if got := notifier.count(); got != 6 {
		t.Errorf("expected 5h warning to re-fire, got %d notifications", got)
	}
}

func TestCheckBelowWarningFiresNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	tn := newTestThresholds(notifier)

	tn.Check("Weekly limit", 0.40)
	if got := notifier.count(); got != 0 {
		t.Errorf("expected no notifications below warning, got %d", got)
	}
}
