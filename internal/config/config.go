// Package config loads and persists claudebar settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/claudebar/claudebar/internal/monitor"
)

// Thresholds are utilization fractions in ascending order.
type Thresholds struct {
	Warning  float64 `json:"warning"`
	Danger   float64 `json:"danger"`
	Critical float64 `json:"critical"`
}

// NotifyConfig selects alert channels beyond the desktop notifier.
type NotifyConfig struct {
	Desktop bool   `json:"desktop"`
	NtfyURL string `json:"ntfy,omitempty"`
	Webhook string `json:"webhook,omitempty"`
}

type HistoryConfig struct {
	Enabled  bool `json:"enabled"`
	KeepDays int  `json:"keep_days"`
}

type Config struct {
	PollIntervalSeconds int           `json:"poll_interval_seconds"`
	MaxRetries          int           `json:"max_retries"`
	RetryDelaySeconds   int           `json:"retry_delay_seconds"`
	Thresholds          Thresholds    `json:"thresholds"`
	Notify              NotifyConfig  `json:"notify"`
	History             HistoryConfig `json:"history"`
	LogLevel            string        `json:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		PollIntervalSeconds: 120,
		MaxRetries:          3,
		RetryDelaySeconds:   5,
		Thresholds: Thresholds{
			Warning:  0.70,
			Danger:   0.85,
			Critical: 0.95,
		},
		Notify:   NotifyConfig{Desktop: true},
		History:  HistoryConfig{Enabled: true, KeepDays: 30},
		LogLevel: "info",
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "claudebar")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "claudebar")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func HistoryPath() string {
	return filepath.Join(ConfigDir(), "history.db")
}

func LogDir() string {
	return filepath.Join(ConfigDir(), "logs")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = def.PollIntervalSeconds
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelaySeconds <= 0 {
		c.RetryDelaySeconds = def.RetryDelaySeconds
	}
	if c.Thresholds.Warning <= 0 {
		c.Thresholds.Warning = def.Thresholds.Warning
	}
	if c.Thresholds.Danger <= 0 {
		c.Thresholds.Danger = def.Thresholds.Danger
	}
	if c.Thresholds.Critical <= 0 {
		c.Thresholds.Critical = def.Thresholds.Critical
	}
	if c.History.KeepDays <= 0 {
		c.History.KeepDays = def.History.KeepDays
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}

// Monitor converts the file representation into the core's Config.
func (c Config) Monitor() monitor.Config {
	return monitor.Config{
		PollInterval:      time.Duration(c.PollIntervalSeconds) * time.Second,
		MaxRetries:        c.MaxRetries,
		RetryDelay:        time.Duration(c.RetryDelaySeconds) * time.Second,
		WarningThreshold:  c.Thresholds.Warning,
		DangerThreshold:   c.Thresholds.Danger,
		CriticalThreshold: c.Thresholds.Critical,
	}
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
