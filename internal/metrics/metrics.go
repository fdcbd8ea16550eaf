package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_created_total",
		Help: "Total number of payment records created, by final status",
	}, []string{"status"})

	PaymentLookupMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_lookup_misses_total",
		Help: "Total number of payment lookups that found no record",
	})

	AuthRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_rejections_total",
		Help: "Total number of requests rejected before reaching business logic",
	}, []string{"reason"})

	TokenValidationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "token_validation_duration_seconds",
		Help:    "Duration of identity-authority validation calls",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})
)
