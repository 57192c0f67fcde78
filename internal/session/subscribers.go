package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/onecard/internal/metrics"
	"github.com/mmynk/onecard/internal/notify"
)

// FormatExpiryMessage is the text sent when a session times out.
func FormatExpiryMessage(s State, at time.Time) string {
	return fmt.Sprintf("Session expired for %s (%s) at %s", s.UserName, s.UserType, at.Format("2006-01-02 15:04:05"))
}

// ExpiryNotifier sends a message to a fixed destination when a session
// expires. Delivery failures are logged and otherwise ignored.
type ExpiryNotifier struct {
	Dispatcher  notify.Dispatcher
	Destination string
	Timeout     time.Duration
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

func (n *ExpiryNotifier) HandleSessionEvent(ctx context.Context, ev Event) {
	if ev.To != Expired {
		return
	}
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	msg := FormatExpiryMessage(ev.State, ev.At)
	if err := n.Dispatcher.Send(ctx, n.Destination, msg); err != nil {
		n.Metrics.ObserveNotifyFailure("session_expiry")
		logger.Warn("Session expiry notification failed", "user", ev.State.UserName, "error", err)
		return
	}
	logger.Info("Session expiry notification sent", "user", ev.State.UserName, "destination", n.Destination)
}

// LogoutHandler clears stored credentials when a session expires, then
// calls Redirect if set.
type LogoutHandler struct {
	KV       KV
	Redirect func(ctx context.Context)
	Logger   *slog.Logger
}

func (h *LogoutHandler) HandleSessionEvent(ctx context.Context, ev Event) {
	if ev.To != Expired {
		return
	}
	if err := ClearCredentials(ctx, h.KV); err != nil {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("Failed to clear expired session", "error", err)
	}
	if h.Redirect != nil {
		h.Redirect(ctx)
	}
}
