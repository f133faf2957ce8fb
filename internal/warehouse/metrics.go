package warehouse

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	summariesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plotline",
		Subsystem: "warehouse",
		Name:      "summaries_total",
		Help:      "Summary queries executed against the warehouse, by kind.",
	}, []string{"kind"})

	queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plotline",
		Subsystem: "warehouse",
		Name:      "query_duration_seconds",
		Help:      "Wall-clock duration of warehouse queries.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms .. ~3m
	})

	queryErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "plotline",
		Subsystem: "warehouse",
		Name:      "query_errors_total",
		Help:      "Warehouse queries that returned an error.",
	})
)

func init() {
	prometheus.MustRegister(summariesTotal, queryDuration, queryErrors)
}

// observe records metrics for one summary query.
func observe(kind string, start time.Time, err error) {
	summariesTotal.WithLabelValues(kind).Inc()
	queryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		queryErrors.Inc()
	}
}
