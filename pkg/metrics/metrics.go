package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream API metrics
var (
	// UpstreamRequestsTotal tracks calls to external services (geocoder, estimator)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heliowatt_upstream_requests_total",
			Help: "Total number of outbound upstream API requests",
		},
		[]string{"upstream", "status"},
	)

	// UpstreamRequestDuration tracks upstream call latency
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heliowatt_upstream_request_duration_seconds",
			Help:    "Duration of outbound upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// SimulationsTotal tracks completed simulation runs by outcome
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heliowatt_simulations_total",
			Help: "Total number of simulation runs",
		},
		[]string{"granularity", "status"},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "heliowatt_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// RecordUpstreamRequest records one outbound API call.
func RecordUpstreamRequest(upstream string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(upstream, status).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordSimulation records one simulation run.
func RecordSimulation(granularity string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SimulationsTotal.WithLabelValues(granularity, status).Inc()
}
