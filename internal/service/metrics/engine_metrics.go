package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finlevels",
			Subsystem: "engine",
			Name:      "latency_seconds",
			Help:      "Latency of levels and portfolio endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finlevels",
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Errors by levels and portfolio endpoint",
		},
		[]string{"endpoint"},
	)

	SymbolFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finlevels",
			Subsystem: "engine",
			Name:      "symbol_failures_total",
			Help:      "Per-symbol fetch failures isolated inside batch operations",
		},
		[]string{"operation"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, SymbolFailures)
	})
}

// Observe records one call of endpoint started at start; a non-nil err also counts an error.
func Observe(endpoint string, start time.Time, err error) {
	EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		EndpointErrors.WithLabelValues(endpoint).Inc()
	}
}
