// Package metrics holds the Prometheus collectors of dnastore. A *Metrics
// satisfies store.Observer and instruments the HTTP handlers; a nil
// *Metrics records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/dnastore/pkg/fault"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the codec and its API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Codec operation metrics
	codecOperationsTotal   *prometheus.CounterVec
	codecOperationDuration *prometheus.HistogramVec
	codecFailuresTotal     *prometheus.CounterVec
	packetAttempts         prometheus.Histogram
	correctionsTotal       *prometheus.CounterVec

	// Run ledger metrics
	ledgerOperationsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnastore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dnastore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dnastore_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		codecOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnastore_codec_operations_total",
				Help: "Total number of encode and decode operations",
			},
			[]string{"operation", "status"},
		),

		codecOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dnastore_codec_operation_duration_seconds",
				Help:    "Encode and decode duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		codecFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnastore_codec_failures_total",
				Help: "Failed codec operations by failure class and kind",
			},
			[]string{"class", "kind"},
		),

		packetAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dnastore_packet_nonce_attempts",
				Help:    "Nonces tried before a packet met its constraints",
				Buckets: []float64{1, 2, 4, 8, 16, 64, 256, 1000},
			},
		),

		correctionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnastore_fec_corrections_total",
				Help: "Packets whose error correction repaired bits",
			},
			[]string{"ecc"},
		),

		ledgerOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnastore_ledger_operations_total",
				Help: "Total number of run ledger operations",
			},
			[]string{"operation", "status"},
		),

		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnastore_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}
}

func statusOf(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// ObserveOperation records one codec call
func (m *Metrics) ObserveOperation(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.codecOperationsTotal.WithLabelValues(op, statusOf(err == nil)).Inc()
	m.codecOperationDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		kind := fault.KindOf(err)
		m.codecFailuresTotal.WithLabelValues(string(kind.Class()), kind.String()).Inc()
	}
}

// ObservePacket records the nonce attempts of one packet
func (m *Metrics) ObservePacket(attempts int) {
	if m == nil {
		return
	}
	m.packetAttempts.Observe(float64(attempts))
}

// ObserveCorrection records a repaired packet
func (m *Metrics) ObserveCorrection(method string) {
	if m == nil {
		return
	}
	m.correctionsTotal.WithLabelValues(method).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLedgerOperation records a run ledger operation
func (m *Metrics) RecordLedgerOperation(operation string, success bool) {
	if m == nil {
		return
	}
	m.ledgerOperationsTotal.WithLabelValues(operation, statusOf(success)).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	if m == nil {
		return
	}
	m.healthChecksTotal.WithLabelValues(statusOf(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
