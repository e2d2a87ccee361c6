package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// updatesTotal counts received updates by kind and outcome
	// (stored, skipped, invalid, error).
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgstore_updates_total",
			Help: "Total number of received Telegram updates.",
		},
		[]string{"kind", "result"},
	)

	outboundRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgstore_outbound_requests_total",
			Help: "Total number of Bot API requests sent.",
		},
		[]string{"method", "result"},
	)

	// limiterWait records how long a limited request waited for a free slot.
	limiterWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tgstore_limiter_wait_seconds",
			Help:    "Time spent waiting for the outbound request limiter.",
			Buckets: []float64{0, .25, .5, 1, 2, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(updatesTotal, outboundRequests, limiterWait)
}

func kindLabel(kind string) string {
	if kind == "" {
		return "unsupported"
	}
	return kind
}
