package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Remote data service
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_call_duration_seconds",
			Help:    "Duration of calls to the remote data service.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "outcome"}, // outcome: ok|error|timeout
	)

	// Money movement requests accepted by the API
	PaymentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Deposit and withdrawal requests created",
		},
		[]string{"kind"},
	)
	BetsPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bets_placed_total",
			Help: "Bets accepted by place_bet",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// Bot
	BotConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_connected",
			Help: "1 when the messaging bot is initialized and reachable",
		},
	)

	// Worker kuyruğu
	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// /metrics endpoint'i için handler
var Handler = promhttp.Handler
