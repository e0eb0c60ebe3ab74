package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes server health on /metrics. Each server instance carries
// its own registry so tests can run servers side by side.
type Metrics struct {
	Registry            *prometheus.Registry
	ConnectedClients    prometheus.Gauge
	FramesSent          prometheus.Counter
	SlowClientEvictions prometheus.Counter
	Reloads             prometheus.Counter
	ReloadFailures      prometheus.Counter
	ExportsTotal        prometheus.Counter
}

func newMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "phylomap",
			Name:      "connected_clients",
			Help:      "Number of active WebSocket clients.",
		}),
		FramesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phylomap",
			Name:      "frames_sent_total",
			Help:      "Position frames delivered to clients.",
		}),
		SlowClientEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phylomap",
			Name:      "slow_client_evictions_total",
			Help:      "Clients dropped because their send queue filled.",
		}),
		Reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phylomap",
			Name:      "graph_reloads_total",
			Help:      "Successful artifact reloads.",
		}),
		ReloadFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phylomap",
			Name:      "graph_reload_failures_total",
			Help:      "Failed artifact reloads.",
		}),
		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phylomap",
			Name:      "svg_exports_total",
			Help:      "SVG snapshot exports served.",
		}),
	}
}
