package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feirinha",
		Subsystem: "persist",
		Name:      "writes_total",
		Help:      "Snapshot writes by slot and result.",
	}, []string{"slot", "result"})

	writeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feirinha",
		Subsystem: "persist",
		Name:      "write_seconds",
		Help:      "Time spent writing one snapshot.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"slot"})
)
