package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	upstreamRequestsTotal *prometheus.CounterVec
	upstreamDuration      *prometheus.HistogramVec
	streamChunksTotal     prometheus.Counter
	dispatchFallbacks     prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escriba_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "escriba_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escriba_upstream_requests_total",
				Help: "Total upstream model API requests.",
			},
			[]string{"provider", "endpoint", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "escriba_upstream_request_duration_seconds",
				Help:    "Upstream request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "endpoint", "status"},
		),
		streamChunksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "escriba_stream_chunks_total",
				Help: "Number of chunks written to generation response streams.",
			},
		),
		dispatchFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "escriba_dispatch_fallback_total",
				Help: "Number of requests routed to the default provider because the model identifier matched no dispatch rule.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamRequestsTotal,
		m.upstreamDuration,
		m.streamChunksTotal,
		m.dispatchFallbacks,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	if method == "" {
		method = "UNKNOWN"
	}
	statusLabel := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveUpstream(provider, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.upstreamRequestsTotal.WithLabelValues(provider, endpoint, statusLabel).Inc()
	m.upstreamDuration.WithLabelValues(provider, endpoint, statusLabel).Observe(duration.Seconds())
}

// UpstreamObserver binds the provider label so upstream clients can report
// without knowing about the metrics type.
func (m *Metrics) UpstreamObserver(provider string) func(endpoint string, status int, duration time.Duration) {
	return func(endpoint string, status int, duration time.Duration) {
		m.ObserveUpstream(provider, endpoint, status, duration)
	}
}

func (m *Metrics) IncStreamChunk() {
	if m == nil {
		return
	}
	m.streamChunksTotal.Inc()
}

func (m *Metrics) IncDispatchFallback() {
	if m == nil {
		return
	}
	m.dispatchFallbacks.Inc()
}
