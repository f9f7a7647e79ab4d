package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeInvalid = "invalid"
)

type metrics struct {
	requests *prometheus.CounterVec
	build    *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gapminder",
			Name:      "chart_requests_total",
			Help:      "Chart payload requests by chart and outcome.",
		}, []string{"chart", "outcome"}),
		build: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gapminder",
			Name:      "chart_build_seconds",
			Help:      "Time spent building chart payloads.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"chart"}),
	}
	reg.MustRegister(m.requests, m.build)
	return m
}

func (m *metrics) observe(chart, outcome string, took time.Duration) {
	m.requests.WithLabelValues(chart, outcome).Inc()
	if outcome != outcomeInvalid {
		m.build.WithLabelValues(chart).Observe(took.Seconds())
	}
}

func outcomeFor(empty bool) string {
	if empty {
		return outcomeEmpty
	}
	return outcomeOK
}
