package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a fetcher. a nil *Metrics is
// valid and records nothing.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	BodyBytesTotal prometheus.Counter
	FetchesActive  prometheus.Gauge
}

// New creates the collectors and registers them with reg, or with the
// default registry when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		FetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gofetch",
				Name:      "fetches_total",
				Help:      "Completed fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gofetch",
				Name:      "fetch_duration_seconds",
				Help:      "Fetch latency from submit to completion",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"outcome"},
		),
		BodyBytesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gofetch",
				Name:      "body_bytes_total",
				Help:      "Response body bytes delivered to sinks",
			},
		),
		FetchesActive: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "gofetch",
				Name:      "fetches_in_flight",
				Help:      "Fetches submitted and not yet completed",
			},
		),
	}
}

func (m *Metrics) Started() {
	if m == nil {
		return
	}
	m.FetchesActive.Inc()
}

// Finished records one completed fetch.
func (m *Metrics) Finished(outcome string, took time.Duration, bodyBytes int64) {
	if m == nil {
		return
	}
	m.FetchesActive.Dec()
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.WithLabelValues(outcome).Observe(took.Seconds())
	if bodyBytes > 0 {
		m.BodyBytesTotal.Add(float64(bodyBytes))
	}
}
