package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	sigParsesTotal      *prometheus.CounterVec
	sigConfidence       *prometheus.HistogramVec
	sigCacheTotal       *prometheus.CounterVec
	sigRewritesTotal    *prometheus.CounterVec
	recommendTotal      *prometheus.CounterVec
	recommendCandidates *prometheus.HistogramVec
	recommendDuration   *prometheus.HistogramVec
	warningsTotal       *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rxpa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rxpa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	sigParsesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpa",
			Subsystem: "sig",
			Name:      "parses_total",
			Help:      "Total sig parse attempts by resolving stage and outcome.",
		},
		[]string{"service", "source", "outcome"},
	)
	sigConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rxpa",
			Subsystem: "sig",
			Name:      "confidence",
			Help:      "Distribution of parse confidence for successful parses.",
			Buckets:   []float64{0.4, 0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1},
		},
		[]string{"service", "source"},
	)
	sigCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpa",
			Subsystem: "sig",
			Name:      "cache_total",
			Help:      "Sig cache lookups by result.",
		},
		[]string{"service", "result"},
	)
	sigRewritesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpa",
			Subsystem: "sig",
			Name:      "rewrites_total",
			Help:      "Rewrite-and-retry attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)
	recommendTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpa",
			Subsystem: "recommend",
			Name:      "requests_total",
			Help:      "Total recommendation requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	recommendCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rxpa",
			Subsystem: "recommend",
			Name:      "candidates",
			Help:      "Distribution of ranked candidates returned per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	recommendDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rxpa",
			Subsystem: "recommend",
			Name:      "duration_seconds",
			Help:      "Recommendation execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	warningsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpa",
			Subsystem: "recommend",
			Name:      "warnings_total",
			Help:      "Warnings attached to recommendations by type.",
		},
		[]string{"service", "type"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		sigParsesTotal,
		sigConfidence,
		sigCacheTotal,
		sigRewritesTotal,
		recommendTotal,
		recommendCandidates,
		recommendDuration,
		warningsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		sigParsesTotal:      sigParsesTotal,
		sigConfidence:       sigConfidence,
		sigCacheTotal:       sigCacheTotal,
		sigRewritesTotal:    sigRewritesTotal,
		recommendTotal:      recommendTotal,
		recommendCandidates: recommendCandidates,
		recommendDuration:   recommendDuration,
		warningsTotal:       warningsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordSigParse(service, source, outcome string, confidence float64) {
	if source == "" {
		source = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.sigParsesTotal.WithLabelValues(service, source, outcome).Inc()
	if outcome == "success" {
		m.sigConfidence.WithLabelValues(service, source).Observe(confidence)
	}
}

func (m *HTTPServerMetrics) RecordSigCache(service string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.sigCacheTotal.WithLabelValues(service, result).Inc()
}

func (m *HTTPServerMetrics) RecordSigRewrite(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.sigRewritesTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordRecommendation(service, outcome string, candidates int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.recommendTotal.WithLabelValues(service, outcome).Inc()
	if outcome == "success" {
		m.recommendCandidates.WithLabelValues(service).Observe(float64(candidates))
	}
	m.recommendDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordWarning(service, warningType string) {
	if warningType == "" {
		warningType = "unknown"
	}
	m.warningsTotal.WithLabelValues(service, warningType).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
