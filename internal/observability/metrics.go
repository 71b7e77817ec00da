package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	pipeCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taoctl",
			Subsystem: "pipe",
			Name:      "commands_total",
			Help:      "Commands issued to the engine.",
		},
		[]string{"mode"},
	)
	queryLines = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "taoctl",
			Subsystem: "pipe",
			Name:      "query_lines",
			Help:      "Scratch lines returned per structured query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	queryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "taoctl",
			Subsystem: "pipe",
			Name:      "query_duration_seconds",
			Help:      "Structured query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	captureBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "taoctl",
			Subsystem: "pipe",
			Name:      "capture_bytes",
			Help:      "Raw output bytes captured per capture command.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(pipeCommands, queryLines, queryDuration, captureBytes)
	})
}

func RecordPipeCommand(mode string) {
	RegisterMetrics()
	pipeCommands.WithLabelValues(mode).Inc()
}

func RecordStructuredQuery(lines int, duration time.Duration) {
	RegisterMetrics()
	pipeCommands.WithLabelValues("query").Inc()
	queryLines.Observe(float64(lines))
	queryDuration.Observe(duration.Seconds())
}

func RecordCaptureBytes(n int) {
	RegisterMetrics()
	captureBytes.Observe(float64(n))
}
