// Package startup handles application initialization, configuration loading,
// and run lifecycle logging.
//
// This package centralizes all application configuration and provides
// consistent logging throughout a pipeline run.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - SOURCE_DIR: Directory scanned for photos (required, must exist)
//   - OUTPUT_DIR: Directory for metadata, thumbnails and cluster output (default: photo_data)
//   - FILE_TYPES: Comma-separated extension filter (default: jpg,jpeg,png)
//   - CONCURRENCY: Extraction worker count (default: sized from available CPUs)
//   - THUMBNAIL_MAX_DIM: Thumbnail bounding dimension in pixels (default: 200)
//   - CLUSTER_RADIUS_M: Cluster grouping radius in meters (default: 50)
//   - METRICS_ENABLED: Enable the Prometheus scrape endpoint (default: false)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - EXTRACT_WORKERS: Override for automatic worker sizing
//
// # Directory Setup
//
// The source directory must exist and is never created; the output
// directory is created if needed and must be writable. Derived output paths
// (metadata file, thumbnail directory, cluster document) all live under the
// output directory.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	startup.LogExtractionStart(st.Len())
//	// ... run the pipeline ...
//	startup.LogRunComplete(startup.RunSummary{ ... })
package startup
