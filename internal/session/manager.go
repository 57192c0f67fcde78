package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/onecard/internal/metrics"
)

// Event is published on every phase change.
type Event struct {
	From  Phase
	To    Phase
	State State
	At    time.Time

	// Manual is set when the transition came from Logout.
	Manual bool
}

// Subscriber reacts to session events. Subscribers run on the goroutine
// that caused the transition, after the manager's lock is released.
type Subscriber interface {
	HandleSessionEvent(ctx context.Context, ev Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, ev Event)

func (f SubscriberFunc) HandleSessionEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// DefaultAuthenticatedRoutes are the route prefixes that require a session.
var DefaultAuthenticatedRoutes = []string{"/customer", "/vendor", "/admin", "/onecard", "/deals/checkout"}

// Manager tracks one login session.
type Manager struct {
	kv      KV
	policy  Policy
	now     func() time.Time
	routes  []string
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	subscribers []Subscriber
	phase       Phase
	state       *State
	onAuthRoute bool

	// expiredAt is the login timestamp an Expired event was published for.
	expiredAt   int64
	expiredSeen bool
	cancel      context.CancelFunc
}

// Option configures a Manager.
type Option func(*Manager)

func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithAuthenticatedRoutes replaces DefaultAuthenticatedRoutes.
func WithAuthenticatedRoutes(prefixes ...string) Option {
	return func(m *Manager) { m.routes = prefixes }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// NewManager creates a manager reading credentials from kv.
func NewManager(kv KV, opts ...Option) *Manager {
	m := &Manager{
		kv:     kv,
		policy: DefaultPolicy(),
		now:    time.Now,
		routes: DefaultAuthenticatedRoutes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers s for future events. Subscribers are called in
// registration order.
func (m *Manager) Subscribe(s Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, s)
}

// Phase returns the phase computed by the last evaluation.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Remaining returns the time left in the current session, or zero.
func (m *Manager) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return 0
	}
	return m.policy.Remaining(*m.state, m.now())
}

// IsAuthenticatedRoute reports whether path needs a session.
func (m *Manager) IsAuthenticatedRoute(path string) bool {
	for _, prefix := range m.routes {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// Navigate records the current route and evaluates immediately.
// Leaving the authenticated area ends tracking.
func (m *Manager) Navigate(ctx context.Context, path string) Phase {
	m.mu.Lock()
	m.onAuthRoute = m.IsAuthenticatedRoute(path)
	m.mu.Unlock()
	return m.Tick(ctx)
}

// Tick re-reads the stored credentials and evaluates the session once.
func (m *Manager) Tick(ctx context.Context) Phase {
	m.mu.Lock()
	tracking := m.onAuthRoute
	m.mu.Unlock()

	// Storage is read outside mu.
	var state *State
	if tracking {
		loaded, err := LoadState(ctx, m.kv)
		if err != nil {
			m.logger.Debug("Session storage unreadable, treating as no session", "error", err)
		} else {
			state = loaded
		}
	}

	m.mu.Lock()
	if !m.onAuthRoute {
		// Navigated away while storage was being read.
		state = nil
	}
	now := m.now()
	next := Evaluate(state, now, m.policy)
	if next == Expired && m.expiredSeen && m.expiredAt == state.LoginTimestamp {
		// Expiry side effects run once per login.
		m.phase, m.state = next, state
		m.mu.Unlock()
		return next
	}
	ev, changed := m.transitionLocked(next, state, now, false)
	if next == Expired {
		m.expiredAt, m.expiredSeen = state.LoginTimestamp, true
	}
	subs := m.subscribers
	m.mu.Unlock()

	if changed {
		m.publish(ctx, subs, ev)
	}
	return next
}

// Logout clears the stored credentials and ends the session without
// triggering expiry side effects.
func (m *Manager) Logout(ctx context.Context) {
	if err := ClearCredentials(ctx, m.kv); err != nil {
		m.logger.Debug("Failed to clear session credentials", "error", err)
	}

	m.mu.Lock()
	ev, changed := m.transitionLocked(NoSession, nil, m.now(), true)
	subs := m.subscribers
	m.mu.Unlock()

	if changed {
		m.publish(ctx, subs, ev)
	}
}

// transitionLocked updates the phase and returns the event to publish.
func (m *Manager) transitionLocked(next Phase, state *State, now time.Time, manual bool) (Event, bool) {
	prev := m.phase
	prevState := m.state
	m.phase = next
	m.state = state
	if next == prev {
		return Event{}, false
	}

	ev := Event{From: prev, To: next, At: now, Manual: manual}
	switch {
	case state != nil:
		ev.State = *state
	case prevState != nil:
		ev.State = *prevState
	}
	return ev, true
}

func (m *Manager) publish(ctx context.Context, subs []Subscriber, ev Event) {
	m.metrics.ObserveSessionTransition(ev.To.String())
	m.logger.Info("Session transition",
		"from", ev.From,
		"to", ev.To,
		"user", ev.State.UserName,
		"user_type", ev.State.UserType,
		"manual", ev.Manual,
	)
	for _, s := range subs {
		s.HandleSessionEvent(ctx, ev)
	}
}

// Start polls every PollInterval until ctx is done or Stop is called.
// It evaluates once before the first tick.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = cancel
	interval := m.policy.PollInterval
	m.mu.Unlock()

	if interval <= 0 {
		interval = DefaultPolicy().PollInterval
	}

	m.Tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Stop ends a running Start loop.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
