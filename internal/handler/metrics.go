package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout_service",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Total number of checkout attempts by payment method and outcome.",
	}, []string{"method", "outcome"})

	checkoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checkout_service",
		Subsystem: "checkout",
		Name:      "duration_seconds",
		Help:      "Histogram of checkout attempt durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	webhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout_service",
		Subsystem: "webhooks",
		Name:      "received_total",
		Help:      "Total number of gateway webhook deliveries by gateway and outcome.",
	}, []string{"gateway", "outcome"})
)

const (
	outcomeCreated          = "created"
	outcomeAlreadyProcessed = "already_processed"
	outcomeRejected         = "rejected"
	outcomeError            = "error"

	outcomeApplied          = "applied"
	outcomeSkipped          = "skipped"
	outcomeInvalidSignature = "invalid_signature"
	outcomeUnknownOrder     = "unknown_order"
)
