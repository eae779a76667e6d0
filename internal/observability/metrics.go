package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	gatewayRequestsTotal  *prometheus.CounterVec
	gatewayLatencySeconds *prometheus.HistogramVec
	submissionsTotal      *prometheus.CounterVec
	gradingLatencySeconds prometheus.Histogram
)

// Submission outcome labels.
const (
	OutcomeGraded        = "graded"
	OutcomeRejected      = "rejected"
	OutcomeNetworkError  = "network_error"
	OutcomeImageDegraded = "image_degraded"
)

// RegisterMetrics initialises the Prometheus collectors used by the gateway.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livetest_requests_total",
			Help: "Total number of gateway requests served.",
		}, []string{"method", "route", "status"})

		gatewayLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livetest_latency_seconds",
			Help:    "Latency distribution for gateway requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livetest_submissions_total",
			Help: "Scantron submissions processed, by outcome.",
		}, []string{"outcome"})

		gradingLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "livetest_grading_latency_seconds",
			Help:    "Wall time from upload to graded acknowledgement.",
			Buckets: []float64{0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		})

		prometheus.MustRegister(gatewayRequestsTotal, gatewayLatencySeconds, submissionsTotal, gradingLatencySeconds)
	})
}

// Requests exposes the counter for gateway requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return gatewayRequestsTotal
}

// Latency exposes the latency histogram for gateway requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gatewayLatencySeconds
}

// Submissions exposes the counter for submission outcomes.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// GradingLatency exposes the upload-to-grade latency histogram.
func GradingLatency() prometheus.Histogram {
	RegisterMetrics()
	return gradingLatencySeconds
}
