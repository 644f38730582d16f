package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewCounterVec creates a labeled counter and registers it through the
// decorated registerer.
func (m *Metrics) NewCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	m.registerer.MustRegister(counter)
	return counter
}

// NewHistogramVec creates a labeled histogram with the given buckets and
// registers it through the decorated registerer. Nil buckets fall back to
// prometheus.DefBuckets.
func (m *Metrics) NewHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
	m.registerer.MustRegister(histogram)
	return histogram
}

// NewGaugeVec creates a labeled gauge and registers it through the decorated
// registerer.
func (m *Metrics) NewGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	m.registerer.MustRegister(gauge)
	return gauge
}
