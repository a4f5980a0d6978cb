package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	commands *prometheus.CounterVec
	rejected *prometheus.CounterVec
	skipped  prometheus.Counter
	rooms    prometheus.Gauge
	clients  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teambuilder",
			Name:      "commands_applied_total",
			Help:      "Roster commands that changed a room, by command type.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teambuilder",
			Name:      "commands_rejected_total",
			Help:      "Roster commands rejected as malformed, by command type.",
		}, []string{"type"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teambuilder",
			Name:      "random_assign_skipped_total",
			Help:      "Random assignments with no free player or no empty slot.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teambuilder",
			Name:      "rooms",
			Help:      "Open rooms.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teambuilder",
			Name:      "clients",
			Help:      "Connected snapshot subscribers across all rooms.",
		}),
	}
	m.registry.MustRegister(m.commands, m.rejected, m.skipped, m.rooms, m.clients)
	return m
}

func (m *Metrics) CommandApplied(cmdType string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(cmdType).Inc()
}

func (m *Metrics) CommandRejected(cmdType string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(cmdType).Inc()
}

func (m *Metrics) RandomAssignSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}

func (m *Metrics) RoomOpened() {
	if m == nil {
		return
	}
	m.rooms.Inc()
}

func (m *Metrics) RoomClosed() {
	if m == nil {
		return
	}
	m.rooms.Dec()
}

func (m *Metrics) ClientJoined() {
	if m == nil {
		return
	}
	m.clients.Inc()
}

func (m *Metrics) ClientLeft() {
	if m == nil {
		return
	}
	m.clients.Dec()
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
