package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	executeDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "multicube",
			Subsystem: "executor",
			Name:      "execute_duration_seconds",
			Help:      "Bucketed histogram of executor execution duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2.0, 20),
		})

	batchStepsHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "multicube",
			Subsystem: "executor",
			Name:      "batch_steps",
			Help:      "Bucketed histogram of steps merged into one batch.",
			Buckets:   []float64{1.0, 2.0, 4.0, 8.0, 16.0, 32.0, 64.0, 128.0, 256.0},
		})
)

// ObserveExecuteDuration observe seconds per executor execution
func ObserveExecuteDuration(start time.Time) {
	executeDurationHistogram.Observe(time.Since(start).Seconds())
}

// ObserveBatchSteps observe steps per batch
func ObserveBatchSteps(steps int) {
	batchStepsHistogram.Observe(float64(steps))
}
