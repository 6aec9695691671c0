package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BiddingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biddings_created_total",
		Help: "Total number of biddings posted",
	})

	BidsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_submitted_total",
		Help: "Total number of supplier bids submitted",
	})

	BidsAwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_awarded_total",
		Help: "Total number of bids awarded",
	})

	BidsDeclinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_declined_total",
		Help: "Total number of bids declined manually",
	})

	BidsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_received_total",
		Help: "Total number of awarded bids marked received",
	})

	SupplierRatingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supplier_ratings_total",
		Help: "Total number of supplier ratings recorded",
	})

	AwardFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awards_failed_total",
		Help: "Total number of failed award attempts",
	}, []string{"reason"})

	AwardTxLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "award_tx_latency_seconds",
		Help:    "Latency of the award transaction",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
