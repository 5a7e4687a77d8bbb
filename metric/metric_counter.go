package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	roundCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "multicube",
			Subsystem: "executor",
			Name:      "round_total",
			Help:      "Total number of scheduler rounds.",
		})

	batchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multicube",
			Subsystem: "executor",
			Name:      "batch_total",
			Help:      "Total number of batches sent to the store.",
		}, []string{"kind"})

	stepCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multicube",
			Subsystem: "executor",
			Name:      "step_total",
			Help:      "Total number of executed steps.",
		}, []string{"kind"})

	storeCommandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multicube",
			Subsystem: "store",
			Name:      "command_total",
			Help:      "Total number of commands executed by the store.",
		}, []string{"mode"})
)

// IncRoundCount inc the scheduler rounds
func IncRoundCount() {
	roundCounter.Inc()
}

// IncBatchCount inc the batches of the kind
func IncBatchCount(kind string) {
	batchCounter.WithLabelValues(kind).Inc()
}

// AddStepCount add executed steps of the kind
func AddStepCount(kind string, value int) {
	stepCounter.WithLabelValues(kind).Add(float64(value))
}

// AddStoreCommandCount add commands executed in the mode, mode is one of
// call, pipelined and multi
func AddStoreCommandCount(mode string, value int) {
	storeCommandCounter.WithLabelValues(mode).Add(float64(value))
}
