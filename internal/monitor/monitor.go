package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Status glyphs, one per threshold tier plus the ok/error/pending states.
const (
	glyphOK       = "🟢"
	glyphWarning  = "🟡"
	glyphDanger   = "🟠"
	glyphCritical = "🔴"
	glyphError    = "⚠️"
)

// Metric labels used for notification keys and message bodies.
const (
	labelFiveHour = "5h limit"
	labelWeekly   = "Weekly limit"
)

// UsageMonitor owns the polling cadence, the last-known-good snapshot, and
// the consecutive-failure count, and drives the client, threshold notifier,
// and display through one serialized refresh cycle at a time.
type UsageMonitor struct {
	cfg        Config
	fetcher    UsageFetcher
	thresholds *ThresholdNotifier
	display    Display
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time

	// mu serializes refresh cycles: the ticker loop and manual refreshes
	// must not run concurrently against the shared state below.
	mu       sync.Mutex
	lastGood *UsageSnapshot
	failures int
}

// New assembles a monitor. recorder may be nil.
func New(cfg Config, fetcher UsageFetcher, thresholds *ThresholdNotifier, display Display, recorder Recorder, logger *slog.Logger) *UsageMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageMonitor{
		cfg:        cfg.normalized(),
		fetcher:    fetcher,
		thresholds: thresholds,
		display:    display,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs an immediate refresh and then polls until ctx is cancelled.
func (m *UsageMonitor) Run(ctx context.Context) {
	m.refresh(ctx)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

// Refresh is the manual-refresh entry point. It resets the failure count
// first, giving the cache another chance even after near-exhaustion.
func (m *UsageMonitor) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.failures = 0
	m.mu.Unlock()
	m.refresh(ctx)
}

// refresh runs one full cycle. Any internal fault is caught, logged, and
// rendered as a generic error state; the polling loop must never die.
func (m *UsageMonitor) refresh(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("refresh cycle fault", "critical", true, "panic", r)
			if m.display != nil {
				m.display.Update(Render{
					State:      StateError,
					Title:      glyphError,
					StatusLine: "Status: internal error",
				})
			}
		}
	}()

	m.cycle(ctx)
}

func (m *UsageMonitor) cycle(ctx context.Context) {
	snap, err := m.fetcher.FetchUsage(ctx)
	if err == nil && snap != nil {
		m.lastGood = snap
		m.failures = 0
		m.logger.Info("usage refreshed",
			"five_hour_pct", snap.FiveHourUtilization,
			"weekly_pct", snap.WeeklyUtilization)
		m.render(snap, StateConnected, 0)

		if m.recorder != nil {
			if recErr := m.recorder.Record(*snap); recErr != nil {
				m.logger.Warn("snapshot record failed", "err", recErr)
			}
		}
		return
	}

	prior := m.failures
	m.failures++
	m.logger.Warn("usage fetch failed",
		"consecutive_failures", m.failures, "err", err)

	if m.lastGood != nil && prior < m.cfg.MaxCachedFailures {
		m.render(m.lastGood, StateCached, m.failures)
		return
	}

	m.renderError()
}

// render formats the display lines and, for live or cached data, runs the
// threshold checks for both metrics.
func (m *UsageMonitor) render(snap *UsageSnapshot, state RenderState, retries int) {
	now := m.now()
	fivePct := snap.FiveHourUtilization
	weekPct := snap.WeeklyUtilization

	statusLine := "Status: connected"
	if state == StateCached {
		statusLine = fmt.Sprintf("Status: retrying (%d)", retries)
	}

	r := Render{
		State:        state,
		FivePct:      fivePct,
		WeekPct:      weekPct,
		FiveHourLine: fmt.Sprintf("5h: %.0f%% used • resets %s", fivePct*100, FormatReset(snap.FiveHourResetsAt, now)),
		WeeklyLine:   fmt.Sprintf("Weekly: %.0f%% used • resets %s", weekPct*100, FormatReset(snap.WeeklyResetsAt, now)),
		StatusLine:   statusLine,
		UpdatedLine:  "Updated: " + snap.FetchedAt.Format("15:04"),
		Title:        m.title(fivePct, weekPct),
	}
	if m.display != nil {
		m.display.Update(r)
	}

	if m.thresholds != nil {
		m.thresholds.Check(labelFiveHour, fivePct)
		m.thresholds.Check(labelWeekly, weekPct)
	}
}

// renderError surfaces the hard failure state: last-known percentages behind
// a warning glyph when any cache exists, a bare warning glyph otherwise.
// No threshold checks run on stale-beyond-trust data.
func (m *UsageMonitor) renderError() {
	r := Render{
		State:      StateError,
		Title:      glyphError,
		StatusLine: fmt.Sprintf("Status: unavailable (%d failures)", m.failures),
	}
	if m.lastGood != nil {
		now := m.now()
		r.FivePct = m.lastGood.FiveHourUtilization
		r.WeekPct = m.lastGood.WeeklyUtilization
		r.FiveHourLine = fmt.Sprintf("5h: %.0f%% used • resets %s",
			r.FivePct*100, FormatReset(m.lastGood.FiveHourResetsAt, now))
		r.WeeklyLine = fmt.Sprintf("Weekly: %.0f%% used • resets %s",
			r.WeekPct*100, FormatReset(m.lastGood.WeeklyResetsAt, now))
		r.UpdatedLine = "Updated: " + m.lastGood.FetchedAt.Format("15:04")
		r.Title = fmt.Sprintf("%s %.0f%%", glyphError, r.FivePct*100)
	}
	m.logger.Error("usage unavailable",
		"consecutive_failures", m.failures, "have_cache", m.lastGood != nil)
	if m.display != nil {
		m.display.Update(r)
	}
}

// title builds the compact two-glyph indicator: one glyph per metric, each
// chosen by the highest threshold tier the metric meets, plus the five-hour
// percentage.
func (m *UsageMonitor) title(fivePct, weekPct float64) string {
	return fmt.Sprintf("%s%s %.0f%%", m.glyph(fivePct), m.glyph(weekPct), fivePct*100)
}

func (m *UsageMonitor) glyph(pct float64) string {
	switch {
	case pct >= m.cfg.CriticalThreshold:
		return glyphCritical
	case pct >= m.cfg.DangerThreshold:
		return glyphDanger
	case pct >= m.cfg.WarningThreshold:
		return glyphWarning
	default:
		return glyphOK
	}
}

// SetThresholds updates the glyph thresholds after a config reload. The
// threshold notifier has its own SetLevels; polling interval changes apply
// on restart.
func (m *UsageMonitor) SetThresholds(cfg Config) {
	cfg = cfg.normalized()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.WarningThreshold = cfg.WarningThreshold
	m.cfg.DangerThreshold = cfg.DangerThreshold
	m.cfg.CriticalThreshold = cfg.CriticalThreshold
}

// SetNow replaces the time source. Used in tests only.
func (m *UsageMonitor) SetNow(fn func() time.Time) { m.now = fn }
