package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so components can run without a registry.
type Metrics struct {
	// Event metrics
	Events         *prometheus.CounterVec
	ProtocolErrors *prometheus.CounterVec

	// Rename metrics
	Renames        *prometheus.CounterVec
	RenameDuration *prometheus.HistogramVec

	// Connection metrics
	Connected  *prometheus.GaugeVec
	Reconnects *prometheus.CounterVec

	// State metrics
	Workspaces prometheus.Gauge
	Windows    prometheus.Gauge

	// Config metrics
	ConfigReloads *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsnamer_events_total",
				Help: "Normalized events received from the window manager",
			},
			[]string{"backend", "type"},
		),
		ProtocolErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsnamer_protocol_errors_total",
				Help: "Malformed messages dropped",
			},
			[]string{"backend"},
		),

		Renames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsnamer_renames_total",
				Help: "Rename decisions by outcome (sent, skipped, failed)",
			},
			[]string{"backend", "status"},
		),
		RenameDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wsnamer_rename_duration_seconds",
				Help:    "Rename command round-trip time",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1},
			},
			[]string{"backend"},
		),

		Connected: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wsnamer_connected",
				Help: "1 while listening to the window manager",
			},
			[]string{"backend"},
		),
		Reconnects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsnamer_reconnects_total",
				Help: "Connection attempts after the first",
			},
			[]string{"backend"},
		),

		Workspaces: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wsnamer_workspaces",
				Help: "Workspaces tracked",
			},
		),
		Windows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wsnamer_windows",
				Help: "Windows tracked",
			},
		),

		ConfigReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wsnamer_config_reloads_total",
				Help: "Symbol configuration reloads by outcome",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordEvent counts a normalized event
func (m *Metrics) RecordEvent(backend, eventType string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(backend, eventType).Inc()
}

// RecordProtocolError counts a dropped message
func (m *Metrics) RecordProtocolError(backend string) {
	if m == nil {
		return
	}
	m.ProtocolErrors.WithLabelValues(backend).Inc()
}

// RecordRename counts a rename decision and, for sent or failed commands,
// its duration
func (m *Metrics) RecordRename(backend, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Renames.WithLabelValues(backend, status).Inc()
	if duration > 0 {
		m.RenameDuration.WithLabelValues(backend).Observe(duration.Seconds())
	}
}

// SetConnected flips the connection gauge
func (m *Metrics) SetConnected(backend string, connected bool) {
	if m == nil {
		return
	}
	v := 0.0
	if connected {
		v = 1
	}
	m.Connected.WithLabelValues(backend).Set(v)
}

// IncReconnects counts a reconnect attempt
func (m *Metrics) IncReconnects(backend string) {
	if m == nil {
		return
	}
	m.Reconnects.WithLabelValues(backend).Inc()
}

// SetState records the tracker's size
func (m *Metrics) SetState(workspaces, windows int) {
	if m == nil {
		return
	}
	m.Workspaces.Set(float64(workspaces))
	m.Windows.Set(float64(windows))
}

// RecordConfigReload counts a reload attempt
func (m *Metrics) RecordConfigReload(status string) {
	if m == nil {
		return
	}
	m.ConfigReloads.WithLabelValues(status).Inc()
}
