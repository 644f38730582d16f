package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and the HTTP server that
// exposes it on /metrics for scraping.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric
	// name collisions.
	Registry *prometheus.Registry

	// registerer is the decorated view of Registry that applies the
	// configured namespace prefix and service label.
	registerer prometheus.Registerer
}

// NewMetrics initializes a Metrics instance: an isolated registry, a
// decorated registerer for instrumented components, optionally the standard
// Go runtime collectors, and an HTTP server serving the /metrics endpoint.
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}

	registry := prometheus.NewRegistry()

	// Everything registered through the decorated registerer carries the
	// service label and namespace prefix, so dashboards can tell services
	// apart without per-metric labeling.
	var registerer prometheus.Registerer = registry
	if cfg.Namespace != "" {
		registerer = prometheus.WrapRegistererWithPrefix(cfg.Namespace+"_", registerer)
	}
	registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registerer)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	return &Metrics{
		Server:     server,
		Registry:   registry,
		registerer: registerer,
	}
}

// Registerer returns the decorated registerer instrumented components should
// register their collectors with.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registerer
}
