package transport

import "github.com/prometheus/client_golang/prometheus"

var (
	metricRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_transport_requests_total",
			Help: "Total number of requests sent.",
		},
		[]string{"method"},
	)

	metricLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radar_transport_request_duration_seconds",
			Help:    "Latency of requests, until the response headers for streams.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	metricErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_transport_request_errors",
			Help: "Total number of failed requests.",
		},
		[]string{"method", "code"},
	)
)

func init() {
	// Register metrics with Prometheus
	prometheus.MustRegister(metricRequests, metricLatency, metricErrors)
}
