package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/claudebar/claudebar/internal/config"
	"github.com/claudebar/claudebar/internal/history"
	"github.com/claudebar/claudebar/internal/keychain"
	"github.com/claudebar/claudebar/internal/monitor"
	"github.com/claudebar/claudebar/internal/notify"
	"github.com/claudebar/claudebar/internal/tui"
)

const sparkPoints = 48

func runMonitor(cfg config.Config, logger *slog.Logger) error {
	mcfg := cfg.Monitor()

	notifiers := buildNotifiers(cfg, logger)
	creds := monitor.NewCredentialProvider(mcfg, keychain.Default(), notifiers, logger)
	client := monitor.NewUsageClient(mcfg, creds, logger)
	thresholds := monitor.NewThresholdNotifier(mcfg, notifiers, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	model := tui.NewModel(cfg.Thresholds.Warning, cfg.Thresholds.Danger, cfg.Thresholds.Critical)

	var mon *monitor.UsageMonitor
	model.SetOnRefresh(func() {
		if mon != nil {
			mon.Refresh(ctx)
		}
	})

	prog := tui.NewProgram(model, tea.WithAltScreen())

	var recorder monitor.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(config.HistoryPath())
		if err != nil {
			logger.Error("opening history store", "error", err)
		} else {
			defer store.Close()
			if removed, err := store.Prune(time.Duration(cfg.History.KeepDays) * 24 * time.Hour); err != nil {
				logger.Warn("pruning history", "error", err)
			} else if removed > 0 {
				logger.Debug("pruned history", "rows", removed)
			}
			recorder = &sparkRecorder{store: store, prog: prog}
		}
	}

	mon = monitor.New(mcfg, client, thresholds, prog, recorder, logger)

	go mon.Run(ctx)

	go func() {
		err := config.Watch(ctx, config.ConfigPath(), logger, func(next config.Config) {
			thresholds.SetLevels(next.Monitor())
			mon.SetThresholds(next.Monitor())
		})
		if err != nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	err := prog.Run()
	cancel()
	return err
}

func buildNotifiers(cfg config.Config, logger *slog.Logger) notify.Multi {
	var m notify.Multi
	if cfg.Notify.Desktop {
		m = append(m, notify.NewDesktop(logger))
	}
	if cfg.Notify.NtfyURL != "" {
		m = append(m, notify.NewNtfy(cfg.Notify.NtfyURL, logger))
	}
	if cfg.Notify.Webhook != "" {
		m = append(m, notify.NewWebhook(cfg.Notify.Webhook, logger))
	}
	return m
}

// sparkRecorder persists each snapshot and feeds the recent five-hour
// utilization series back to the TUI sparkline.
type sparkRecorder struct {
	store *history.Store
	prog  *tui.Program
}

func (s *sparkRecorder) Record(snap monitor.UsageSnapshot) error {
	if err := s.store.Record(snap); err != nil {
		return err
	}
	points, err := s.store.Recent(sparkPoints)
	if err != nil {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.FiveHour * 100
	}
	s.prog.PushHistory(values)
	return nil
}
