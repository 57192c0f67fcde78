// Package metrics exposes Prometheus collectors for allocations, payouts
// and session lifecycle transitions.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the OneCard collectors. A nil *Metrics is a no-op.
type Metrics struct {
	allocations      *prometheus.CounterVec
	payouts          *prometheus.CounterVec
	allocationErrors *prometheus.CounterVec
	sessionPhases    *prometheus.CounterVec
	notifyFailures   *prometheus.CounterVec
}

var (
	once     sync.Once
	registry *Metrics
)

// Default returns the process-wide collectors, registering them with the
// default Prometheus registry on first use.
func Default() *Metrics {
	once.Do(func() {
		registry = New(prometheus.DefaultRegisterer)
	})
	return registry
}

// New builds collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onecard_allocations_total",
			Help: "Allocations recorded by rate table and purchaser role.",
		}, []string{"table", "role"}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onecard_payout_amount_total",
			Help: "Sum of allocated amounts by rate table and component.",
		}, []string{"table", "component"}),
		allocationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onecard_allocation_errors_total",
			Help: "Allocation failures by reason.",
		}, []string{"reason"}),
		sessionPhases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onecard_session_transitions_total",
			Help: "Session lifecycle transitions by target phase.",
		}, []string{"phase"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onecard_notify_failures_total",
			Help: "Failed notification dispatches by channel.",
		}, []string{"channel"}),
	}
	if reg != nil {
		reg.MustRegister(m.allocations, m.payouts, m.allocationErrors, m.sessionPhases, m.notifyFailures)
	}
	return m
}

// ObserveAllocation counts one recorded allocation and its components.
func (m *Metrics) ObserveAllocation(table, role string, customer, vendor, admin float64) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(table, role).Inc()
	m.payouts.WithLabelValues(table, "customer").Add(customer)
	m.payouts.WithLabelValues(table, "vendor").Add(vendor)
	m.payouts.WithLabelValues(table, "admin").Add(admin)
}

func (m *Metrics) ObserveAllocationError(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.allocationErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSessionTransition(phase string) {
	if m == nil {
		return
	}
	m.sessionPhases.WithLabelValues(phase).Inc()
}

func (m *Metrics) ObserveNotifyFailure(channel string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(channel).Inc()
}
