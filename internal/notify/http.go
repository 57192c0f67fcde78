package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// HTTPConfig configures an HTTPDispatcher.
type HTTPConfig struct {
	// Endpoint is the notification edge function URL.
	Endpoint string
	// APIKey is sent as a bearer token when set.
	APIKey string

	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration

	// RatePerSecond limits sends; zero disables limiting.
	RatePerSecond float64
	Burst         int
}

// HTTPDispatcher posts {"to", "message"} JSON to an edge function,
// retrying transient failures.
type HTTPDispatcher struct {
	endpoint string
	apiKey   string
	client   *retryablehttp.Client
	limiter  *rate.Limiter
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// NewHTTPDispatcher creates a dispatcher for cfg.Endpoint.
func NewHTTPDispatcher(cfg HTTPConfig, logger *slog.Logger) *HTTPDispatcher {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	client.Logger = logger.With("component", "notify")

	d := &HTTPDispatcher{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   client,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return d
}

// Send posts one message. Non-2xx responses after retries are errors.
func (d *HTTPDispatcher) Send(ctx context.Context, to, message string) error {
	if to == "" {
		return ErrNoDestination
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("notification rate limit: %w", err)
		}
	}

	body, err := json.Marshal(sendRequest{To: to, Message: message})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}
