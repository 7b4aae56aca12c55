package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-mapper/internal/cluster"
	"photo-mapper/internal/logging"
	"photo-mapper/internal/metrics"
	"photo-mapper/internal/pipeline"
	"photo-mapper/internal/startup"
	"photo-mapper/internal/store"
	"photo-mapper/internal/thumbnail"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Start metrics endpoint
	if config.MetricsEnabled {
		info := startup.GetBuildInfo()
		metrics.SetAppInfo(info.Version, info.GoVersion)
		metricsSrv := metrics.Serve(config.MetricsPort)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsSrv.Shutdown(ctx); err != nil {
				logging.Warn("Metrics server shutdown error: %v", err)
			}
		}()
	}

	// Initialize image decoding
	thumbnail.InitVips()
	defer thumbnail.ShutdownVips()

	// Load existing metadata
	st, err := store.Load(config.MetadataPath)
	if err != nil {
		startup.LogFatal("Failed to load metadata store: %v", err)
	}
	startup.LogExtractionStart(st.Len())

	gen, err := thumbnail.NewGenerator(config.ThumbnailDir, config.ThumbnailMaxDim)
	if err != nil {
		startup.LogFatal("Failed to set up thumbnail directory: %v", err)
	}

	// Cancel the run on SIGINT/SIGTERM; a cancelled run persists nothing.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		startup.LogShutdownInitiated(sig.String())
		startup.LogShutdownStep("Waiting for in-flight extraction to drain")
		cancel()
	}()

	metrics.ExtractWorkers.Set(float64(config.Concurrency))

	extractor := pipeline.New(pipeline.Config{
		SourceDir:   config.SourceDir,
		Extensions:  config.FileTypes,
		Concurrency: config.Concurrency,
	}, gen)

	summary, err := extractor.Run(ctx, st)
	if err != nil {
		if ctx.Err() != nil {
			startup.LogShutdownStepComplete("Run cancelled, outputs unchanged")
			return
		}
		startup.LogFatal("Extraction failed: %v", err)
	}

	// Build and persist the cluster document
	doc := cluster.BuildDocument(st.Records(), config.ClusterRadiusM)
	if err := cluster.WriteDocument(config.ClustersPath, doc); err != nil {
		startup.LogFatal("Failed to write cluster document: %v", err)
	}
	logging.Info("Cluster document saved: %d clusters in %s", len(doc.Clusters), config.ClustersPath)

	metrics.ObserveRun(summary.Extracted, summary.Skipped, summary.NoLocation, summary.Failed,
		summary.Duration.Seconds(), float64(time.Now().Unix()))
	metrics.StoreRecords.Set(float64(st.Len()))
	metrics.ClustersBuilt.Set(float64(len(doc.Clusters)))
	metrics.ClusterLargest.Set(float64(largestWeight(doc.Clusters)))

	startup.LogRunComplete(startup.RunSummary{
		Candidates: summary.Candidates,
		Extracted:  summary.Extracted,
		Skipped:    summary.Skipped,
		NoLocation: summary.NoLocation,
		Failed:     summary.Failed,
		Records:    st.Len(),
		Clusters:   len(doc.Clusters),
		Duration:   time.Since(startTime),
	})
}

func largestWeight(clusters []cluster.Cluster) int {
	largest := 0
	for _, c := range clusters {
		if c.Weight > largest {
			largest = c.Weight
		}
	}
	return largest
}
