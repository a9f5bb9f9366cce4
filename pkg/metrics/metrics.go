package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	payouts         prometheus.Counter
	payoutAmount    prometheus.Counter
	feedback        prometheus.Counter
	cacheLookups    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waste_requests_submitted_total",
		Help: "Waste requests submitted, by waste type",
	}, []string{"waste_type"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waste_request_status_changes_total",
		Help: "Admin status changes, by target status",
	}, []string{"status"})

	payouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waste_payouts_total",
		Help: "Completed requests credited to their owners",
	})

	payoutAmount := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waste_payout_amount_total",
		Help: "Sum of amounts credited to owners",
	})

	feedback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waste_feedback_total",
		Help: "Feedback entries recorded",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups, by cache and result",
	}, []string{"cache", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, submissions, transitions, payouts, payoutAmount, feedback, cacheLookups, goroutines)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		submissions:     submissions,
		transitions:     transitions,
		payouts:         payouts,
		payoutAmount:    payoutAmount,
		feedback:        feedback,
		cacheLookups:    cacheLookups,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *Metrics) RecordSubmission(wasteType string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(wasteType).Inc()
}

func (m *Metrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordPayout(amount float64) {
	if m == nil {
		return
	}
	m.payouts.Inc()
	if amount > 0 {
		m.payoutAmount.Add(amount)
	}
}

func (m *Metrics) RecordFeedback() {
	if m == nil {
		return
	}
	m.feedback.Inc()
}

func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}
