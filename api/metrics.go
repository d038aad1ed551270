package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/warp/meter-invoice/billing"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoice_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	invoiceComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_computations_total",
			Help: "Invoice computations by outcome.",
		},
		[]string{"outcome"},
	)
	invoiceComputeDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invoice_compute_duration_seconds",
			Help:    "Time spent loading records and computing one invoice.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func observeComputation(err error, dur time.Duration) {
	invoiceComputationsTotal.WithLabelValues(outcome(err)).Inc()
	invoiceComputeDurationSeconds.Observe(dur.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, billing.ErrFileNotFound):
		return "error"
	case billing.IsNotFound(err):
		return "not_found"
	case billing.IsClientError(err):
		return "rejected"
	default:
		return "error"
	}
}

// instrument records request count and latency per chi route pattern,
// so /api/customers/{id} is one series regardless of id.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "other"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDurationSeconds.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
