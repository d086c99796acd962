package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/notes-api/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "notes",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Auth metrics

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes",
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts, by outcome.",
	}, []string{"action", "outcome"})

	OwnershipDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notes",
		Name:      "ownership_denials_total",
		Help:      "Note mutations rejected because the caller is not the owner.",
	}, []string{"action"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "notes",
		Name:      "auth_rate_limited_total",
		Help:      "Auth requests rejected by the per-client rate limiter.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		AuthAttemptsTotal,
		OwnershipDenialsTotal,
		RateLimitedTotal,
	)
}

type prober interface {
	Liveness(ctx context.Context) health.HealthResult
	Readiness(ctx context.Context) health.HealthResult
}

// NewServer serves /metrics, /healthz and /readyz on a separate listener.
func NewServer(addr string, checker prober) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
