// Package monitor implements the refresh/retry/cache/notify state machine
// behind the claudebar usage indicator. It polls the Anthropic OAuth usage
// endpoint, degrades to cached data on failure, and drives a Display and a
// Notifier without ever letting a bad cycle kill the polling loop.
package monitor

import (
	"context"
	"errors"
	"time"
)

// Defaults for the polling state machine. Overridable through Config; the
// zero Config is normalized to these values.
const (
	DefaultPollInterval = 120 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 5 * time.Second

	DefaultWarningThreshold  = 0.70
	DefaultDangerThreshold   = 0.85
	DefaultCriticalThreshold = 0.95

	// After this many consecutive failed cycles the cached snapshot is no
	// longer trusted and the monitor surfaces a hard error state.
	DefaultMaxCachedFailures = 5
)

// Config carries the tunables of a UsageMonitor and its collaborators.
type Config struct {
	PollInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration

	WarningThreshold  float64
	DangerThreshold   float64
	CriticalThreshold float64

	MaxCachedFailures int
}

// DefaultConfig returns the compiled-in defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:      DefaultPollInterval,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		WarningThreshold:  DefaultWarningThreshold,
		DangerThreshold:   DefaultDangerThreshold,
		CriticalThreshold: DefaultCriticalThreshold,
		MaxCachedFailures: DefaultMaxCachedFailures,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.WarningThreshold <= 0 {
		c.WarningThreshold = def.WarningThreshold
	}
	if c.DangerThreshold <= 0 {
		c.DangerThreshold = def.DangerThreshold
	}
	if c.CriticalThreshold <= 0 {
		c.CriticalThreshold = def.CriticalThreshold
	}
	if c.MaxCachedFailures <= 0 {
		c.MaxCachedFailures = def.MaxCachedFailures
	}
	return c
}

// UsageSnapshot is one successful read of the usage endpoint. Utilization
// values are the raw 0-100 API values divided by 100; out-of-range values
// pass through untouched. Immutable once created and replaced wholesale.
type UsageSnapshot struct {
	FiveHourUtilization float64
	FiveHourResetsAt    string // raw resets_at value, may be empty
	WeeklyUtilization   float64
	WeeklyResetsAt      string
	FetchedAt           time.Time
}

// RenderState classifies the outcome of a refresh cycle.
type RenderState string

const (
	StateConnected RenderState = "connected"
	StateCached    RenderState = "cached"
	StateError     RenderState = "error"
)

// Render is the full set of strings handed to a Display. Label lines are
// pre-formatted so a display sink needs no usage semantics of its own.
type Render struct {
	State RenderState

	FiveHourLine string
	WeeklyLine   string
	StatusLine   string
	UpdatedLine  string

	// Title is the compact icon string: one glyph per metric plus the
	// five-hour percentage.
	Title string

	FivePct float64
	WeekPct float64
}

// CredentialStore retrieves the raw credential payload from an external
// secure store. The payload is expected to be the Claude Code credentials
// JSON containing claudeAiOauth.accessToken.
type CredentialStore interface {
	Lookup(ctx context.Context) ([]byte, error)
}

// Notifier fires a user-visible alert. Fire-and-forget.
type Notifier interface {
	Notify(title, body string)
}

// Display receives rendered state after every refresh cycle.
type Display interface {
	Update(Render)
}

// Recorder persists successful snapshots. Optional.
type Recorder interface {
	Record(UsageSnapshot) error
}

// UsageFetcher is the contract the orchestrator depends on; *UsageClient is
// the production implementation.
type UsageFetcher interface {
	FetchUsage(ctx context.Context) (*UsageSnapshot, error)
}

// Error taxonomy. Every failure a refresh cycle can see wraps one of these;
// all are absorbed at the cycle boundary and converted into a render state.
var (
	ErrAuthUnavailable = errors.New("credential store unavailable")
	ErrAuthMalformed   = errors.New("credential payload malformed")
	ErrTokenExpired    = errors.New("token expired")
	ErrNetwork         = errors.New("network failure")
	ErrServer          = errors.New("server error")
	ErrClient          = errors.New("client error")
)
