package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coedit", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coedit", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	RealtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "coedit", Name: "realtime_connections", Help: "Number of open realtime websocket connections."},
	)
	RealtimeDeltasForwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "coedit", Name: "realtime_deltas_forwarded_total", Help: "Number of edit deltas relayed to room members."},
	)
	DocumentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "coedit", Name: "documents_created_total", Help: "Number of documents created."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RealtimeConnections)
	reg.MustRegister(RealtimeDeltasForwarded)
	reg.MustRegister(DocumentsCreated)
}
