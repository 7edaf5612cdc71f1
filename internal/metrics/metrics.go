// Package metrics exposes Prometheus collectors for bill-splitting sessions.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors recorded by the session manager and the RPC layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	commands    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	sessions    prometheus.Gauge
	payments    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New registers the collectors against registerer. A nil registerer selects
// the default Prometheus registerer; repeated calls then share one instance.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(registerer)
}

// Command records the outcome of a user command ("ok" or "rejected").
func (m *Metrics) Command(command string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// Transition counts a session state change.
func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// PaymentRequested counts a dispatched payment request by backend result.
func (m *Metrics) PaymentRequested(err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.payments.WithLabelValues(status).Inc()
}

// ObserveRPC records the duration of a handled procedure.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
}

func build(registerer prometheus.Registerer) *Metrics {
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billsplit_commands_total",
		Help: "User commands handled, partitioned by command and outcome.",
	}, []string{"command", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billsplit_session_transitions_total",
		Help: "Session state transitions partitioned by source and target state.",
	}, []string{"from", "to"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "billsplit_active_sessions",
		Help: "Number of sessions currently held in memory.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billsplit_payment_requests_total",
		Help: "Payment requests dispatched, partitioned by delivery status.",
	}, []string{"status"})
	rpcDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billsplit_rpc_duration_seconds",
		Help:    "Duration in seconds of handled RPCs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure", "code"})
	registerer.MustRegister(commands, transitions, sessions, payments, rpcDuration)
	return &Metrics{
		commands:    commands,
		transitions: transitions,
		sessions:    sessions,
		payments:    payments,
		rpcDuration: rpcDuration,
	}
}
