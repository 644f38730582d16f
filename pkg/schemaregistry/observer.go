package schemaregistry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer collects cache and registry fetch metrics for a client. All
// methods are safe on a nil receiver, so the client can call them without
// checking whether an observer was attached.
type Observer struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewObserver creates an observer and registers its collectors with reg.
// It panics when a collector with the same name is already registered, so
// create at most one observer per registry.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemaregistry_cache_hits_total",
			Help: "Schema lookups served from the local cache, partitioned by lookup kind.",
		}, []string{"lookup"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemaregistry_cache_misses_total",
			Help: "Schema lookups that had to consult the registry, partitioned by lookup kind.",
		}, []string{"lookup"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemaregistry_fetches_total",
			Help: "Registry fetch requests, partitioned by lookup kind.",
		}, []string{"lookup"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schemaregistry_fetch_errors_total",
			Help: "Registry fetch requests that failed, partitioned by lookup kind.",
		}, []string{"lookup"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schemaregistry_fetch_duration_seconds",
			Help:    "Latency of registry fetch requests.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(o.cacheHits, o.cacheMisses, o.fetches, o.fetchErrors, o.fetchDuration)
	return o
}

// CacheHit records a lookup answered from the cache.
func (o *Observer) CacheHit(kind string) {
	if o == nil {
		return
	}
	o.cacheHits.WithLabelValues(kind).Inc()
}

// CacheMiss records a lookup that fell through to the registry.
func (o *Observer) CacheMiss(kind string) {
	if o == nil {
		return
	}
	o.cacheMisses.WithLabelValues(kind).Inc()
}

// Fetch records one registry request with its duration and outcome.
func (o *Observer) Fetch(kind string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.fetches.WithLabelValues(kind).Inc()
	if err != nil {
		o.fetchErrors.WithLabelValues(kind).Inc()
	}
	o.fetchDuration.Observe(duration.Seconds())
}
