package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the HTTP layer and the
// purchasing workflow.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	receivedUnits   prometheus.Counter
	payments        *prometheus.CounterVec
	lowStock        prometheus.Gauge
	jobs            *prometheus.CounterVec
}

// NewMetrics initialises the registry and every metric.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockroom_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_order_transitions_total",
		Help: "Purchase order status transitions by target status.",
	}, []string{"to"})
	received := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_goods_received_units_total",
		Help: "Units taken into stock from purchase orders.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_payments_recorded_total",
		Help: "Payments recorded by status.",
	}, []string{"status"})
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_low_stock_products",
		Help: "Products below the low stock threshold at the last scan.",
	})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_jobs_total",
		Help: "Background jobs processed by task and outcome.",
	}, []string{"task", "outcome"})
	registry.MustRegister(requests, duration, transitions, received, payments, lowStock, jobs)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		transitions:     transitions,
		receivedUnits:   received,
		payments:        payments,
		lowStock:        lowStock,
		jobs:            jobs,
	}
}

// Handler returns the http.Handler for /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// OrderTransitioned counts an order moving into status to.
func (m *Metrics) OrderTransitioned(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

// GoodsReceived adds units taken into stock.
func (m *Metrics) GoodsReceived(units int) {
	if m == nil || units <= 0 {
		return
	}
	m.receivedUnits.Add(float64(units))
}

// PaymentRecorded counts a stored payment.
func (m *Metrics) PaymentRecorded(status string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(status).Inc()
}

// LowStockProducts sets the low stock gauge.
func (m *Metrics) LowStockProducts(n int) {
	if m == nil {
		return
	}
	m.lowStock.Set(float64(n))
}

// JobProcessed counts a finished background job.
func (m *Metrics) JobProcessed(task string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.jobs.WithLabelValues(task, outcome).Inc()
}

// Registerer exposes the registry for custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
