package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	scheduledOperationsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "multicube",
			Subsystem: "executor",
			Name:      "scheduled_operations",
			Help:      "Number of operations captured by the last scheduled block.",
		})

	storageBytesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "multicube",
			Subsystem: "storage",
			Name:      "bytes",
			Help:      "Total bytes read from and written to the storage.",
		}, []string{"type"})

	storageAppliedBatchesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "multicube",
			Subsystem: "storage",
			Name:      "applied_batches",
			Help:      "Total number of write batches applied by the storage.",
		})
)

// SetScheduledOperations set the operations captured by a scheduled block
func SetScheduledOperations(count int) {
	scheduledOperationsGauge.Set(float64(count))
}

// SetStorageStats set the read/written bytes and applied batches of the storage
func SetStorageStats(written, read, appliedBatches uint64) {
	storageBytesGauge.WithLabelValues("written").Set(float64(written))
	storageBytesGauge.WithLabelValues("read").Set(float64(read))
	storageAppliedBatchesGauge.Set(float64(appliedBatches))
}
