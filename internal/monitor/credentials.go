package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// lookupTimeout bounds a single credential store call so a hung external
// lookup cannot stall the refresh loop.
const lookupTimeout = 10 * time.Second

// CredentialProvider retrieves and caches the OAuth bearer token from a
// CredentialStore, retrying transient failures. The cached token lives until
// Invalidate or process exit.
type CredentialProvider struct {
	store    CredentialStore
	notifier Notifier
	logger   *slog.Logger

	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)

	mu           sync.Mutex
	token        string
	failedTokens int // consecutive exhausted acquisitions since last success
}

// NewCredentialProvider wires a provider against the given store. The
// notifier receives the one-shot "Authentication Required" alert.
func NewCredentialProvider(cfg Config, store CredentialStore, notifier Notifier, logger *slog.Logger) *CredentialProvider {
	cfg = cfg.normalized()
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialProvider{
		store:      store,
		notifier:   notifier,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		sleep:      time.Sleep,
	}
}

type credentialPayload struct {
	ClaudeAiOauth struct {
		AccessToken string `json:"accessToken"`
	} `json:"claudeAiOauth"`
}

// Token returns the cached token unless forceRefresh is set, otherwise
// attempts retrieval from the store with retries. On exhaustion it returns an
// error wrapping ErrAuthUnavailable or ErrAuthMalformed and, on the first
// such failure since the last success, notifies the user exactly once.
func (p *CredentialProvider) Token(ctx context.Context, forceRefresh bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && !forceRefresh {
		return p.token, nil
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if attempt > 1 {
			p.sleep(p.retryDelay)
		}

		token, err := p.lookupOnce(ctx)
		if err == nil {
			p.token = token
			p.failedTokens = 0
			p.logger.Info("credential acquired", "attempt", attempt)
			return token, nil
		}

		lastErr = err
		p.logger.Warn("credential attempt failed",
			"attempt", attempt, "max_retries", p.maxRetries, "err", err)
	}

	// Notify only on the first exhausted acquisition of this failure
	// episode; a success resets the counter and re-arms the alert.
	if p.failedTokens == 0 && p.notifier != nil {
		p.notifier.Notify("Authentication Required",
			"Run 'claude' in a terminal first to authenticate.")
	}
	p.failedTokens++
	p.logger.Error("credential acquisition exhausted",
		"episode_failures", p.failedTokens, "err", lastErr)

	return "", lastErr
}

func (p *CredentialProvider) lookupOnce(ctx context.Context) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	raw, err := p.store.Lookup(lookupCtx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	var creds credentialPayload
	if err := json.Unmarshal(raw, &creds); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthMalformed, err)
	}
	if creds.ClaudeAiOauth.AccessToken == "" {
		// Retrying cannot fix a missing field, but the absent-token case
		// shares the retry loop with transport errors on purpose.
		return "", fmt.Errorf("%w: accessToken missing from payload", ErrAuthMalformed)
	}
	return creds.ClaudeAiOauth.AccessToken, nil
}

// Invalidate drops the cached token, forcing the next Token call to hit the
// store. Called by the client on HTTP 401.
func (p *CredentialProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
}

// SetSleep replaces the inter-retry delay function. Used in tests only.
func (p *CredentialProvider) SetSleep(fn func(time.Duration)) {
	p.sleep = fn
}
