package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthEvents counts login, refresh, logout and guard outcomes.
	// result is "success" or an error kind.
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "finance_tracker", Name: "auth_events_total", Help: "Authentication events by type and result."},
		[]string{"event", "result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "finance_tracker", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "finance_tracker", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
		[]string{"limiter"},
	)
	Panics = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "finance_tracker", Name: "http_panics_total", Help: "Handler panics recovered by the server."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthEvents)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Panics)
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
