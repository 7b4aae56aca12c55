// Package workers determines worker pool sizes for the extraction
// pipeline based on available CPUs.
//
// Go 1.19+ sets GOMAXPROCS from container CPU limits, so the helpers here
// size pools from runtime.GOMAXPROCS(0) rather than runtime.NumCPU(), which
// still reports the host machine's CPU count inside a container.
//
// All functions respect the EXTRACT_WORKERS environment variable, which
// overrides the automatic calculation.
package workers
