package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notify_relay"

type Metrics struct {
	registry      *prometheus.Registry
	notifications *prometheus.CounterVec
	replyWait     *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	requests      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Native notifications by source and outcome.",
		}, []string{"source", "outcome"}),
		replyWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reply_wait_seconds",
			Help:      "Time spent waiting on the native facility.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 15, 20, 30},
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_in_flight",
			Help:      "Notifications currently waiting on a reply.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.notifications,
		m.replyWait,
		m.inFlight,
		m.requests,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Started marks one notification as waiting and returns the func that
// records its outcome.
func (m *Metrics) Started(source string) func(outcome string) {
	start := time.Now()
	m.inFlight.Inc()
	return func(outcome string) {
		m.inFlight.Dec()
		m.notifications.WithLabelValues(source, outcome).Inc()
		m.replyWait.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
