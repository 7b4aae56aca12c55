package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction run metrics
var (
	RunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_mapper_runs_total",
			Help: "Total number of extraction runs",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_mapper_run_duration_seconds",
			Help:    "Extraction run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_mapper_last_run_timestamp",
			Help: "Unix timestamp of the last completed extraction run",
		},
	)

	FilesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_mapper_files_extracted_total",
			Help: "Total number of files extracted into new records",
		},
	)

	FilesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_mapper_files_skipped_total",
			Help: "Total number of files skipped as already-known content",
		},
	)

	FilesWithoutLocation = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_mapper_files_without_location_total",
			Help: "Total number of files excluded for missing GPS data",
		},
	)

	FilesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_mapper_files_failed_total",
			Help: "Total number of files that failed extraction",
		},
	)

	ExtractWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_mapper_extract_workers",
			Help: "Number of extraction workers in the current run",
		},
	)
)

// Output product metrics
var (
	StoreRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_mapper_store_records",
			Help: "Number of photo records in the metadata store",
		},
	)

	ClustersBuilt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_mapper_clusters_built",
			Help: "Number of location clusters in the last cluster document",
		},
	)

	ClusterLargest = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_mapper_cluster_largest_weight",
			Help: "Weight of the largest cluster in the last cluster document",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_mapper_app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// ObserveRun records the counters for one completed extraction run.
func ObserveRun(extracted, skipped, noLocation, failed int, durationSeconds float64, completedAt float64) {
	RunsTotal.Inc()
	RunDuration.Observe(durationSeconds)
	LastRunTimestamp.Set(completedAt)
	FilesExtracted.Add(float64(extracted))
	FilesSkipped.Add(float64(skipped))
	FilesWithoutLocation.Add(float64(noLocation))
	FilesFailed.Add(float64(failed))
}
