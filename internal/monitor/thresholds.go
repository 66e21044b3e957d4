package monitor

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Level identifies a notification severity tier.
type Level string

const (
	LevelWarning  Level = "warning"
	LevelDanger   Level = "danger"
	LevelCritical Level = "critical"
)

type levelSpec struct {
	level     Level
	threshold float64
}

// ThresholdNotifier tracks which (metric, level) notifications have fired in
// the current above-warning episode and decides when to fire or reset them.
type ThresholdNotifier struct {
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	levels []levelSpec // ascending by threshold
	fired  map[string]struct{}
}

// NewThresholdNotifier builds a notifier with the thresholds from cfg.
func NewThresholdNotifier(cfg Config, notifier Notifier, logger *slog.Logger) *ThresholdNotifier {
	cfg = cfg.normalized()
	if logger == nil {
		logger = slog.Default()
	}
	t := &ThresholdNotifier{
		notifier: notifier,
		logger:   logger,
		fired:    make(map[string]struct{}),
	}
	t.setLevels(cfg)
	return t
}

// SetLevels replaces the thresholds, e.g. after a config reload. Fired state
// is kept; entries above a raised threshold simply stop mattering.
func (t *ThresholdNotifier) SetLevels(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLevels(cfg.normalized())
}

func (t *ThresholdNotifier) setLevels(cfg Config) {
	t.levels = []levelSpec{
		{LevelWarning, cfg.WarningThreshold},
		{LevelDanger, cfg.DangerThreshold},
		{LevelCritical, cfg.CriticalThreshold},
	}
}

// Check evaluates every level independently for the given metric and fires at
// most one notification per (metric, level) per episode. Dropping below the
// warning threshold clears all entries for that metric, re-arming them.
func (t *ThresholdNotifier) Check(metricLabel string, pct float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, spec := range t.levels {
		key := metricLabel + "_" + string(spec.level)
		if pct < spec.threshold {
			continue
		}
		if _, ok := t.fired[key]; ok {
			continue
		}
		t.fired[key] = struct{}{}

		title, body := thresholdMessage(spec.level, metricLabel, pct)
		t.logger.Info("usage threshold crossed",
			"metric", metricLabel, "level", string(spec.level), "pct", pct)
		if t.notifier != nil {
			t.notifier.Notify(title, body)
		}
	}

	// Reset notifications once usage drops back under warning, scoped to
	// this metric so other metrics keep their fired state.
	if pct < t.levels[0].threshold {
		prefix := metricLabel + "_"
		t.fired = lo.OmitBy(t.fired, func(key string, _ struct{}) bool {
			return strings.HasPrefix(key, prefix)
		})
	}
}

func thresholdMessage(level Level, metricLabel string, pct float64) (title, body string) {
	switch level {
	case LevelCritical:
		return "⚠️ Usage Critical!",
			fmt.Sprintf("You've used %.0f%% of your %s. Consider pausing.", pct*100, metricLabel)
	case LevelDanger:
		return "Usage High",
			fmt.Sprintf("You've used %.0f%% of your %s.", pct*100, metricLabel)
	default:
		return "Usage Warning",
			fmt.Sprintf("You've reached %.0f%% of your %s.", pct*100, metricLabel)
	}
}
