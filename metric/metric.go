package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(scheduledOperationsGauge)
	registry.MustRegister(storageBytesGauge)
	registry.MustRegister(storageAppliedBatchesGauge)

	registry.MustRegister(roundCounter)
	registry.MustRegister(batchCounter)
	registry.MustRegister(stepCounter)
	registry.MustRegister(storeCommandCounter)

	registry.MustRegister(executeDurationHistogram)
	registry.MustRegister(batchStepsHistogram)
}

// Registry returns the registry holding all the collectors of the package
func Registry() *prometheus.Registry {
	return registry
}
