package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfstore",
		Name:      "operations_total",
		Help:      "Number of store operations performed, by operation and outcome",
	}, []string{"op", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cfstore",
		Name:      "operation_duration_seconds",
		Help:      "Latency of store operations",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"op"})

	rowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfstore",
		Name:      "rows_written_total",
		Help:      "Number of rows written or deleted, by table",
	}, []string{"table"})

	rowsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfstore",
		Name:      "rows_read_total",
		Help:      "Number of rows returned to callers, by table",
	}, []string{"table"})
)

func recordOperation(op string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = kindOf(err).String()
	}

	operationsTotal.WithLabelValues(op, outcome).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
