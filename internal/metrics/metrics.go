package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	appointmentOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_operations_total",
			Help: "Appointment operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	medicationLogs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medication_logs_total",
			Help: "Medication adherence log attempts by outcome",
		},
		[]string{"outcome"},
	)

	healthScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "health_score",
			Help:    "Distribution of computed composite health scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	insightFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_fallbacks_total",
			Help: "Sub-score computations that fell back to their default",
		},
		[]string{"input"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics labelled by the chi route pattern so
// ids in paths don't explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RecordAppointment counts a scheduler operation ("book", "cancel", ...)
// with its outcome ("ok", "conflict", "rejected", "error").
func RecordAppointment(op, outcome string) {
	appointmentOps.WithLabelValues(op, outcome).Inc()
}

func RecordMedicationLog(outcome string) {
	medicationLogs.WithLabelValues(outcome).Inc()
}

func RecordHealthScore(score int) {
	healthScores.Observe(float64(score))
}

func RecordInsightFallback(input string) {
	insightFallbacks.WithLabelValues(input).Inc()
}
