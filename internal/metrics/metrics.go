package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "samara", Name: "booking_operations_total", Help: "Booking handler calls by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	ListCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "samara", Name: "booking_list_cache_total", Help: "Booking list cache lookups by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "samara", Name: "rate_limit_allowed_total", Help: "Number of mutation requests let through by the limiter."},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "samara", Name: "rate_limit_rejected_total", Help: "Number of mutation requests rejected by the limiter."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(BookingOperations)
	reg.MustRegister(ListCache)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
