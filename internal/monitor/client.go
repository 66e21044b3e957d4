package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUsageURL = "https://api.anthropic.com/api/oauth/usage"
	betaFlag        = "oauth-2025-04-20"
	userAgent       = "claudebar"

	fetchTimeout = 15 * time.Second
)

// UsageClient fetches the usage payload with bearer auth, recovering from
// stale tokens (401 → force refresh, retry without consuming an attempt) and
// retrying transient transport and server failures.
type UsageClient struct {
	creds  *CredentialProvider
	logger *slog.Logger

	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
}

// NewUsageClient builds a client on top of the given credential provider.
func NewUsageClient(cfg Config, creds *CredentialProvider, logger *slog.Logger) *UsageClient {
	cfg = cfg.normalized()
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageClient{
		creds:      creds,
		logger:     logger,
		baseURL:    defaultUsageURL,
		httpClient: &http.Client{Timeout: fetchTimeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

type usageWindow struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    string  `json:"resets_at"`
}

type usageResponse struct {
	FiveHour usageWindow `json:"five_hour"`
	SevenDay usageWindow `json:"seven_day"`
}

// FetchUsage performs the authenticated GET against the usage endpoint.
// A 401 invalidates the cached token and force-refreshes it; that round does
// not consume a retry attempt, but only one refresh is granted per call so a
// persistently rejected token cannot loop forever.
func (c *UsageClient) FetchUsage(ctx context.Context) (*UsageSnapshot, error) {
	token, err := c.creds.Token(ctx, false)
	if err != nil {
		return nil, err
	}

	var (
		lastErr   error
		refreshed bool
	)

	for attempt := 1; attempt <= c.maxRetries; {
		resp, err := c.doGet(ctx, token)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrNetwork, err)
			c.logger.Warn("usage request failed",
				"attempt", attempt, "max_retries", c.maxRetries, "err", err)
			attempt++
			if attempt <= c.maxRetries {
				c.sleep(c.retryDelay)
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			if refreshed {
				return nil, fmt.Errorf("%w: still unauthorized after token refresh", ErrTokenExpired)
			}
			refreshed = true
			c.logger.Info("token rejected, forcing refresh")
			c.creds.Invalidate()
			token, err = c.creds.Token(ctx, true)
			if err != nil {
				return nil, fmt.Errorf("%w: refresh failed: %v", ErrTokenExpired, err)
			}
			continue // does not consume a retry attempt

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: HTTP %d", ErrServer, resp.StatusCode)
			c.logger.Warn("usage endpoint server error",
				"attempt", attempt, "status", resp.StatusCode)
			attempt++
			if attempt <= c.maxRetries {
				c.sleep(c.retryDelay)
			}
			continue

		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("%w: HTTP %d: %s", ErrClient,
				resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if readErr != nil {
			lastErr = fmt.Errorf("%w: reading response: %v", ErrNetwork, readErr)
			attempt++
			if attempt <= c.maxRetries {
				c.sleep(c.retryDelay)
			}
			continue
		}

		var usage usageResponse
		if err := json.Unmarshal(body, &usage); err != nil {
			return nil, fmt.Errorf("%w: parsing response: %v", ErrClient, err)
		}

		return &UsageSnapshot{
			FiveHourUtilization: usage.FiveHour.Utilization / 100,
			FiveHourResetsAt:    usage.FiveHour.ResetsAt,
			WeeklyUtilization:   usage.SevenDay.Utilization / 100,
			WeeklyResetsAt:      usage.SevenDay.ResetsAt,
			FetchedAt:           c.now(),
		}, nil
	}

	return nil, lastErr
}

// doGet issues one request; the client's 15s Timeout bounds the whole call
// including the body read.
func (c *UsageClient) doGet(ctx context.Context, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-beta", betaFlag)
	req.Header.Set("User-Agent", userAgent)
	return c.httpClient.Do(req)
}

// SetBaseURL points the client at a different endpoint. Used in tests only.
func (c *UsageClient) SetBaseURL(url string) { c.baseURL = url }

// SetSleep replaces the inter-retry delay function. Used in tests only.
func (c *UsageClient) SetSleep(fn func(time.Duration)) { c.sleep = fn }

// SetNow replaces the time source. Used in tests only.
func (c *UsageClient) SetNow(fn func() time.Time) { c.now = fn }
