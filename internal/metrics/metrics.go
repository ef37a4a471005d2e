package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "l8tefuel_"

var (
	registerOnce sync.Once

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	matchResults     *prometheus.CounterVec
	fuelLogsCreated  prometheus.Counter
)

// Init registers the application metrics with the default registry, which
// ginprom exposes on /metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_lookup_requests_total",
				Help: "Total price lookups by source and result",
			},
			[]string{"source", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "price_lookup_latency_seconds",
				Help:    "Price lookup latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		matchResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_match_total",
				Help: "Price match operations by mode and status",
			},
			[]string{"mode", "status"},
		)
		fuelLogsCreated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "fuel_logs_created_total",
				Help: "Total fuel log entries created",
			},
		)

		prometheus.MustRegister(upstreamRequests, upstreamLatency, matchResults, fuelLogsCreated)
	})
}

func ObservePriceLookup(source, result string, seconds float64) {
	if upstreamRequests == nil {
		return
	}
	upstreamRequests.WithLabelValues(source, result).Inc()
	upstreamLatency.WithLabelValues(source).Observe(seconds)
}

func ObserveMatch(mode, status string) {
	if matchResults == nil {
		return
	}
	matchResults.WithLabelValues(mode, status).Inc()
}

func IncFuelLogsCreated() {
	if fuelLogsCreated == nil {
		return
	}
	fuelLogsCreated.Inc()
}
