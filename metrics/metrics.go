// Package metrics exposes Prometheus counters and gauges for the
// connection engine and command executor, grounded on
// entertainment-venue-rcproxy's GlobalStats pattern (promauto collectors,
// held per Metrics value, incremented at dispatch time). No HTTP exporter
// is wired here — there is no HTTP surface in this server — so an
// embedding process scrapes the registry itself if it wants to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels the commands-processed counter.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics bundles the counters and gauges the connection engine and
// command executor update. A nil *Metrics is not valid; use New or
// NewWithRegisterer to construct one.
type Metrics struct {
	commandsProcessed *prometheus.CounterVec
	activeConnections prometheus.Gauge
}

// New registers the collectors against prometheus's default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors against reg, letting
// callers (notably tests) use an isolated registry instead of the
// global default one.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		commandsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "respd",
			Name:      "commands_processed_total",
			Help:      "Count of RESP commands processed, labeled by command name and outcome.",
		}, []string{"command", "outcome"}),
		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "respd",
			Name:      "active_connections",
			Help:      "Number of currently open client connections.",
		}),
	}
}

// CommandProcessed increments the counter for one command execution.
func (m *Metrics) CommandProcessed(command, outcome string) {
	m.commandsProcessed.WithLabelValues(command, outcome).Inc()
}

// ConnectionOpened increments the active-connections gauge.
func (m *Metrics) ConnectionOpened() {
	m.activeConnections.Inc()
}

// ConnectionClosed decrements the active-connections gauge.
func (m *Metrics) ConnectionClosed() {
	m.activeConnections.Dec()
}
