// Package session enforces a fixed-length login session on authenticated
// routes.
//
// The lifetime is an absolute TTL measured from the stored login time:
// activity does not extend it, only a fresh login does. Evaluate is the
// pure state machine; Manager polls it against a key-value store and
// publishes transitions to subscribers, which own the side effects.
package session

import (
	"time"

	"github.com/mmynk/onecard/internal/models"
)

// Phase is where a session is in its lifecycle.
type Phase int

const (
	NoSession Phase = iota
	Active
	WarningWindow
	Expired
)

func (p Phase) String() string {
	switch p {
	case NoSession:
		return "no_session"
	case Active:
		return "active"
	case WarningWindow:
		return "warning_window"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// State is the stored record of a login.
type State struct {
	// LoginTimestamp is epoch milliseconds.
	LoginTimestamp int64       `json:"loginTimestamp"`
	UserType       models.Role `json:"userType"`
	UserName       string      `json:"userName"`
	IsActive       bool        `json:"isActive"`
}

// LoginTime converts LoginTimestamp to a time.Time.
func (s State) LoginTime() time.Time {
	return time.UnixMilli(s.LoginTimestamp)
}

// Elapsed is how long ago the login happened.
func (s State) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.LoginTime())
}

// Policy holds the session timings.
type Policy struct {
	// Duration is the absolute session lifetime.
	Duration time.Duration
	// Warning is how long before expiry the warning window opens.
	Warning time.Duration
	// PollInterval is how often Manager re-evaluates.
	PollInterval time.Duration
}

// DefaultPolicy is a five minute session with a 30 second warning,
// evaluated every five seconds.
func DefaultPolicy() Policy {
	return Policy{
		Duration:     5 * time.Minute,
		Warning:      30 * time.Second,
		PollInterval: 5 * time.Second,
	}
}

// Remaining is the time left before expiry, never negative.
func (p Policy) Remaining(s State, now time.Time) time.Duration {
	left := p.Duration - s.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

// Evaluate returns the phase of state at now. A nil or inactive state is
// NoSession.
func Evaluate(state *State, now time.Time, p Policy) Phase {
	if state == nil || !state.IsActive {
		return NoSession
	}
	elapsed := state.Elapsed(now)
	switch {
	case elapsed >= p.Duration:
		return Expired
	case elapsed >= p.Duration-p.Warning:
		return WarningWindow
	default:
		return Active
	}
}
