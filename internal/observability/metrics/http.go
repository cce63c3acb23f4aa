package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	proposalGenTotal    *prometheus.CounterVec
	proposalGenDuration *prometheus.HistogramVec
	proposalEditTotal   *prometheus.CounterVec
	uploadTotal         *prometheus.CounterVec
	uploadBytes         *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposalia",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proposalia",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "proposalia",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	proposalGenTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposalia",
			Subsystem: "proposal",
			Name:      "generations_total",
			Help:      "Total proposal generation runs by outcome.",
		},
		[]string{"service", "status"},
	)
	proposalGenDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proposalia",
			Subsystem: "proposal",
			Name:      "generation_duration_seconds",
			Help:      "Proposal generation duration in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 180},
		},
		[]string{"service"},
	)
	proposalEditTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposalia",
			Subsystem: "proposal",
			Name:      "edits_total",
			Help:      "Total proposal chat edits by outcome.",
		},
		[]string{"service", "status"},
	)
	uploadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proposalia",
			Subsystem: "documents",
			Name:      "uploads_total",
			Help:      "Total document uploads by outcome.",
		},
		[]string{"service", "status"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proposalia",
			Subsystem: "documents",
			Name:      "upload_bytes",
			Help:      "Distribution of uploaded PDF sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 4, 8),
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		proposalGenTotal,
		proposalGenDuration,
		proposalEditTotal,
		uploadTotal,
		uploadBytes,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		proposalGenTotal:    proposalGenTotal,
		proposalGenDuration: proposalGenDuration,
		proposalEditTotal:   proposalEditTotal,
		uploadTotal:         uploadTotal,
		uploadBytes:         uploadBytes,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
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

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/proposals/"):
		return "/v1/proposals/{proposal_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordProposalGeneration(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.proposalGenTotal.WithLabelValues(service, status).Inc()
	m.proposalGenDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordProposalEdit(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.proposalEditTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordUpload(service string, sizeBytes int64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploadTotal.WithLabelValues(service, status).Inc()
	if err == nil && sizeBytes > 0 {
		m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
	}
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
