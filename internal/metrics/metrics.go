
// Package metrics holds the Prometheus collectors of the HTTP service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"markup-tokens/internal/models"
)

const (
	labelEndpoint = "endpoint"
	labelStatus   = "status"
	labelKind     = "kind"
	labelSource   = "source"
)

type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	durations     *prometheus.SummaryVec
	conversions   *prometheus.CounterVec
	inputBytes    prometheus.Counter
	tokens        *prometheus.CounterVec
	inflightGauge prometheus.Gauge
}

// New registers all collectors on a fresh registry, so several instances can
// live in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "markup_tokens_http_requests_total",
			Help: "HTTP requests by endpoint and status code.",
		}, []string{labelEndpoint, labelStatus}),
		durations: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "markup_tokens_http_request_duration_seconds",
			Help:       "request time including streaming of the body",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{labelEndpoint}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "markup_tokens_conversions_total",
			Help: "Documents converted, by source (markup, url, file) and status.",
		}, []string{labelSource, labelStatus}),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "markup_tokens_input_bytes_total",
			Help: "bytes of markup converted",
		}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "markup_tokens_tokens_total",
			Help: "tokens produced, by kind",
		}, []string{labelKind}),
		inflightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "markup_tokens_conversions_inflight",
			Help: "conversions currently running",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.durations,
		m.conversions,
		m.inputBytes,
		m.tokens,
		m.inflightGauge,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ConversionStarted marks a conversion as running; call the returned func
// when it ends.
func (m *Metrics) ConversionStarted() func() {
	m.inflightGauge.Inc()
	return m.inflightGauge.Dec
}

// ObserveConversion records one finished conversion. counts may be nil for a
// failed one.
func (m *Metrics) ObserveConversion(source string, size int, counts map[models.Kind]int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.conversions.WithLabelValues(source, status).Inc()
	m.inputBytes.Add(float64(size))
	for kind, n := range counts {
		m.tokens.WithLabelValues(string(kind)).Add(float64(n))
	}
}
