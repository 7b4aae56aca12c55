package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"photo-mapper/internal/logging"
	"photo-mapper/internal/mediatypes"
	"photo-mapper/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	SourceDir       string
	OutputDir       string
	FileTypes       mediatypes.ExtensionSet
	Concurrency     int
	ThumbnailMaxDim int
	ClusterRadiusM  float64
	MetricsEnabled  bool
	MetricsPort     string

	// Derived paths
	MetadataPath string
	ThumbnailDir string
	ClustersPath string
}

// LoadConfig loads and validates configuration from environment variables.
// SOURCE_DIR is required and must name an existing directory; everything
// else has a default.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	sourceDir := getEnv("SOURCE_DIR", "")
	outputDir := getEnv("OUTPUT_DIR", "photo_data")
	fileTypesStr := getEnv("FILE_TYPES", "")
	concurrency := getEnvInt("CONCURRENCY", 0)
	thumbnailMaxDim := getEnvInt("THUMBNAIL_MAX_DIM", 200)
	clusterRadius := getEnvFloat("CLUSTER_RADIUS_M", 50)
	metricsEnabled := getEnvBool("METRICS_ENABLED", false)
	metricsPort := getEnv("METRICS_PORT", "9090")

	fileTypes := mediatypes.ParseExtensionList(fileTypesStr)
	if len(fileTypes) == 0 {
		fileTypes = mediatypes.ParseExtensions(mediatypes.DefaultExtensions)
	}
	if concurrency <= 0 {
		concurrency = workers.ForMixed(0)
	}

	logging.Info("  SOURCE_DIR:        %s", sourceDir)
	logging.Info("  OUTPUT_DIR:        %s", outputDir)
	logging.Info("  FILE_TYPES:        %v", fileTypes.List())
	logging.Info("  CONCURRENCY:       %d", concurrency)
	logging.Info("  THUMBNAIL_MAX_DIM: %d", thumbnailMaxDim)
	logging.Info("  CLUSTER_RADIUS_M:  %g", clusterRadius)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	if sourceDir == "" {
		return nil, fmt.Errorf("SOURCE_DIR is required")
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory path: %w", err)
	}
	logging.Info("  Source directory (absolute): %s", sourceDir)

	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", sourceDir)
	}

	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	logging.Info("  Output directory (absolute): %s", outputDir)

	config := &Config{
		SourceDir:       sourceDir,
		OutputDir:       outputDir,
		FileTypes:       fileTypes,
		Concurrency:     concurrency,
		ThumbnailMaxDim: thumbnailMaxDim,
		ClusterRadiusM:  clusterRadius,
		MetricsEnabled:  metricsEnabled,
		MetricsPort:     metricsPort,
		MetadataPath:    filepath.Join(outputDir, "photos_metadata.json"),
		ThumbnailDir:    filepath.Join(outputDir, "thumbnails"),
		ClustersPath:    filepath.Join(outputDir, "photo_clusters.json"),
	}

	if err := ensureDirectory(outputDir, "output"); err != nil {
		return nil, fmt.Errorf("output directory error: %w", err)
	}

	logging.Debug("  Testing output directory write access...")
	if err := testWriteAccess(outputDir); err != nil {
		return nil, fmt.Errorf("output directory is not writable: %w", err)
	}
	logging.Info("  [OK] Output directory is writable")

	return config, nil
}

// LogExtractionStart logs the beginning of the extraction pass
func LogExtractionStart(existing int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTRACTION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Known records: %d", existing)
}

// RunSummary holds the figures for the end-of-run report
type RunSummary struct {
	Candidates int
	Extracted  int
	Skipped    int
	NoLocation int
	Failed     int
	Records    int
	Clusters   int
	Duration   time.Duration
}

// LogRunComplete logs the end-of-run summary
func LogRunComplete(s RunSummary) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("RUN COMPLETE")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Candidates:       %d", s.Candidates)
	logging.Info("  New records:      %d", s.Extracted)
	logging.Info("  Skipped (known):  %d", s.Skipped)
	logging.Info("  Without location: %d", s.NoLocation)
	logging.Info("  Failed:           %d", s.Failed)
	logging.Info("")
	logging.Info("  Store records:    %d", s.Records)
	logging.Info("  Clusters:         %d", s.Clusters)
	logging.Info("  Duration:         %v", s.Duration.Round(time.Millisecond))
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __          __  ___
   / __ \/ /_  ____  / /_____    /  |/  /___ _____  ____  ___  _____
  / /_/ / __ \/ __ \/ __/ __ \  / /|_/ / __ '/ __ \/ __ \/ _ \/ ___/
 / ____/ / / / /_/ / /_/ /_/ / / /  / / /_/ / /_/ / /_/ /  __/ /
/_/   /_/ /_/\____/\__/\____/ /_/  /_/\__,_/ .___/ .___/\___/_/
                                          /_/   /_/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("Invalid numeric value for %s: %q, using default: %g", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
