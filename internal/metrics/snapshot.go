package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SnapshotFeatures is the number of geolocated features in the
	// currently published snapshot.
	SnapshotFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oldto",
		Name:      "snapshot_features",
		Help:      "Geolocated features in the current snapshot",
	})

	// SnapshotLocations is the number of distinct location keys.
	SnapshotLocations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oldto",
		Name:      "snapshot_locations",
		Help:      "Distinct location keys in the current snapshot",
	})

	// SnapshotReloads counts successful snapshot publishes.
	SnapshotReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oldto",
		Name:      "snapshot_reloads_total",
		Help:      "Successful snapshot rebuilds",
	})

	// SnapshotReloadFailures counts reloads that kept the old snapshot.
	SnapshotReloadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oldto",
		Name:      "snapshot_reload_failures_total",
		Help:      "Failed snapshot rebuilds (previous snapshot retained)",
	})

	// SnapshotBuildSeconds observes load+build duration.
	SnapshotBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oldto",
		Name:      "snapshot_build_duration_seconds",
		Help:      "Time spent loading sources and building a snapshot",
		Buckets:   prometheus.DefBuckets,
	})
)

// RegisterSnapshotMetrics registers snapshot metrics explicitly (no init()).
func RegisterSnapshotMetrics() {
	prometheus.MustRegister(
		SnapshotFeatures,
		SnapshotLocations,
		SnapshotReloads,
		SnapshotReloadFailures,
		SnapshotBuildSeconds,
	)
}
