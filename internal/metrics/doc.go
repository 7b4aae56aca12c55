// Package metrics provides Prometheus instrumentation for the photo mapper
// pipeline.
//
// All metrics are prefixed with "photo_mapper_" to avoid naming collisions
// with other applications. Counters track cumulative extraction activity
// across runs of a long-lived process; the store and cluster gauges reflect
// the output products of the most recent run.
//
// Metrics register with the default Prometheus registry via promauto. The
// optional scrape endpoint is started with [Serve] and shut down by the
// caller:
//
//	srv := metrics.Serve(config.MetricsPort)
//	defer srv.Shutdown(ctx)
//
// Recording from other packages uses the exported variables directly:
//
//	metrics.StoreRecords.Set(float64(st.Len()))
//	metrics.ClustersBuilt.Set(float64(len(doc.Clusters)))
package metrics
