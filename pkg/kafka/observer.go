package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer collects produce and consume metrics for a client. All methods
// are safe on a nil receiver, so the client can call them without checking
// whether an observer was attached.
type Observer struct {
	published       *prometheus.CounterVec
	publishErrors   *prometheus.CounterVec
	publishDuration prometheus.Histogram
	consumed        *prometheus.CounterVec
	consumedBytes   *prometheus.CounterVec
	consumeErrors   *prometheus.CounterVec
}

// NewObserver creates an observer and registers its collectors with reg.
// It panics when a collector with the same name is already registered, so
// create at most one observer per registry.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_published_total",
			Help: "Messages written to Kafka, partitioned by topic.",
		}, []string{"topic"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_publish_errors_total",
			Help: "Writes that failed, including serialization failures, partitioned by topic.",
		}, []string{"topic"}),
		publishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kafka_publish_duration_seconds",
			Help:    "Latency of successful writes.",
			Buckets: prometheus.DefBuckets,
		}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Messages fetched from Kafka, partitioned by topic.",
		}, []string{"topic"}),
		consumedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumed_bytes_total",
			Help: "Record body bytes fetched from Kafka, partitioned by topic.",
		}, []string{"topic"}),
		consumeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consume_errors_total",
			Help: "Fetches that failed, partitioned by topic.",
		}, []string{"topic"}),
	}

	reg.MustRegister(o.published, o.publishErrors, o.publishDuration, o.consumed, o.consumedBytes, o.consumeErrors)
	return o
}

// Publish records one write attempt with its duration and outcome.
func (o *Observer) Publish(topic string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.publishErrors.WithLabelValues(topic).Inc()
		return
	}
	o.published.WithLabelValues(topic).Inc()
	o.publishDuration.Observe(duration.Seconds())
}

// Consume records one fetched record and its body size.
func (o *Observer) Consume(topic string, bytes int) {
	if o == nil {
		return
	}
	o.consumed.WithLabelValues(topic).Inc()
	o.consumedBytes.WithLabelValues(topic).Add(float64(bytes))
}

// ConsumeError records a failed fetch.
func (o *Observer) ConsumeError(topic string) {
	if o == nil {
		return
	}
	o.consumeErrors.WithLabelValues(topic).Inc()
}
