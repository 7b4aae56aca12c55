// Package pipeline runs the per-file extraction pass: enumerate candidate
// photos, extract metadata concurrently, and merge the results into the
// store in a deterministic order.
//
// Each candidate is processed in isolation. A file that fails to hash,
// parse or thumbnail is logged and counted but never aborts the run; only
// context cancellation stops the pass early, and a cancelled pass persists
// nothing.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"photo-mapper/internal/digest"
	"photo-mapper/internal/geoexif"
	"photo-mapper/internal/logging"
	"photo-mapper/internal/mediatypes"
	"photo-mapper/internal/store"
	"photo-mapper/internal/workers"
)

// Hasher produces the content digest of a file.
type Hasher interface {
	Hash(path string) (string, error)
}

// Parser extracts normalized EXIF fields from a file. A (nil, nil) return
// means the file carries no usable geolocation and is excluded, not failed.
type Parser interface {
	Parse(path string) (*geoexif.Fields, error)
}

// Thumbnailer decodes a source photo and writes its bounded derivative.
type Thumbnailer interface {
	Decode(path string) (image.Image, error)
	Generate(img image.Image, name string) (string, error)
}

// Config controls one extraction pass.
type Config struct {
	// SourceDir is the directory scanned for candidates. The scan is
	// non-recursive; subdirectories are ignored.
	SourceDir string

	// Extensions filters candidates by file extension.
	Extensions mediatypes.ExtensionSet

	// Concurrency is the worker count. Values <= 0 pick a mixed-workload
	// default from the available CPUs.
	Concurrency int
}

// Extractor runs extraction passes over a source directory.
type Extractor struct {
	cfg   Config
	hash  Hasher
	parse Parser
	thumb Thumbnailer
}

// New returns an Extractor using the production extraction chain: BLAKE2b
// content digests, EXIF parsing and the given thumbnail generator.
func New(cfg Config, thumb Thumbnailer) *Extractor {
	return &Extractor{
		cfg:   cfg,
		hash:  digestHasher{},
		parse: exifParser{},
		thumb: thumb,
	}
}

// NewWithParts returns an Extractor with every stage supplied by the
// caller. Tests use it to substitute stages.
func NewWithParts(cfg Config, h Hasher, p Parser, t Thumbnailer) *Extractor {
	return &Extractor{cfg: cfg, hash: h, parse: p, thumb: t}
}

// Summary reports what one extraction pass did.
type Summary struct {
	// Candidates is the number of files matching the extension filter.
	Candidates int

	// Extracted is the number of new records appended to the store.
	Extracted int

	// Skipped counts candidates whose content digest was already stored,
	// including duplicates first seen earlier in the same pass.
	Skipped int

	// NoLocation counts candidates without a usable GPS block.
	NoLocation int

	// Failed counts candidates that errored during extraction.
	Failed int

	// Duration is the wall-clock time of the pass.
	Duration time.Duration
}

// outcome classifies a single candidate's extraction result.
type outcome int

const (
	outcomeRecord outcome = iota
	outcomeSkipped
	outcomeNoLocation
	outcomeFailed
)

type result struct {
	index   int
	name    string
	outcome outcome
	rec     store.PhotoRecord
	err     error
}

// Run executes one extraction pass and persists the updated store.
//
// Candidates are processed by a bounded worker pool, but results are merged
// into the store in directory-listing order, so the stored record order
// (and with it the downstream cluster order) does not depend on worker
// scheduling. On context cancellation Run returns the context error without
// saving.
func (e *Extractor) Run(ctx context.Context, st *store.Store) (Summary, error) {
	start := time.Now()

	entries, err := os.ReadDir(e.cfg.SourceDir)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read source directory %s: %w", e.cfg.SourceDir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !e.cfg.Extensions.Matches(entry.Name()) {
			continue
		}
		candidates = append(candidates, entry.Name())
	}

	summary := Summary{Candidates: len(candidates)}
	if len(candidates) == 0 {
		logging.Info("No candidate files in %s", e.cfg.SourceDir)
		summary.Duration = time.Since(start)
		return summary, nil
	}

	numWorkers := e.cfg.Concurrency
	if numWorkers <= 0 {
		numWorkers = workers.ForMixed(0)
	}
	if numWorkers > len(candidates) {
		numWorkers = len(candidates)
	}
	logging.Info("Extracting %d candidates with %d workers", len(candidates), numWorkers)

	jobs := make(chan int, len(candidates))
	results := make(chan result, len(candidates))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				name := candidates[idx]
				res := e.extract(st, name)
				res.index = idx
				results <- res
			}
		}()
	}

	for idx := range candidates {
		jobs <- idx
	}
	close(jobs)

	// Single collector; indexing by candidate position restores listing
	// order regardless of completion order.
	done := make(chan struct{})
	ordered := make([]*result, len(candidates))
	go func() {
		defer close(done)
		for res := range results {
			res := res
			ordered[res.index] = &res
		}
	}()

	wg.Wait()
	close(results)
	<-done

	if err := ctx.Err(); err != nil {
		logging.Warn("Extraction cancelled, discarding partial results")
		return Summary{}, err
	}

	for _, res := range ordered {
		if res == nil {
			continue
		}
		switch res.outcome {
		case outcomeRecord:
			if st.Append(res.rec) {
				summary.Extracted++
				logging.Debug("Recorded %s at (%f, %f)",
					res.name, res.rec.Latitude(), res.rec.Longitude())
			} else {
				// Same content seen earlier in this pass.
				summary.Skipped++
				logging.Debug("Duplicate content within run: %s", res.name)
			}
		case outcomeSkipped:
			summary.Skipped++
		case outcomeNoLocation:
			summary.NoLocation++
			logging.Debug("No GPS data in %s", res.name)
		case outcomeFailed:
			summary.Failed++
			logging.Warn("Extraction failed for %s: %v", res.name, res.err)
		}
	}

	if err := st.Save(); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(start)
	logging.Info("Extraction pass complete: %d new, %d skipped, %d without location, %d failed (%s)",
		summary.Extracted, summary.Skipped, summary.NoLocation, summary.Failed,
		summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// extract processes a single candidate. The store is only read here
// (Contains); all writes happen in the merge step after the pool drains.
func (e *Extractor) extract(st *store.Store, name string) result {
	res := result{name: name}

	path := filepath.Join(e.cfg.SourceDir, name)
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	hash, err := e.hash.Hash(path)
	if err != nil {
		res.outcome = outcomeFailed
		res.err = fmt.Errorf("content hash: %w", err)
		return res
	}

	if st.Contains(hash) {
		res.outcome = outcomeSkipped
		return res
	}

	fields, err := e.parse.Parse(path)
	if err != nil {
		res.outcome = outcomeFailed
		res.err = fmt.Errorf("exif parse: %w", err)
		return res
	}
	if fields == nil {
		res.outcome = outcomeNoLocation
		return res
	}

	img, err := e.thumb.Decode(path)
	if err != nil {
		res.outcome = outcomeFailed
		res.err = fmt.Errorf("image decode: %w", err)
		return res
	}

	thumbPath, err := e.thumb.Generate(img, hash)
	if err != nil {
		res.outcome = outcomeFailed
		res.err = fmt.Errorf("thumbnail: %w", err)
		return res
	}
	absThumb, err := filepath.Abs(thumbPath)
	if err != nil {
		absThumb = thumbPath
	}

	res.outcome = outcomeRecord
	res.rec = store.PhotoRecord{
		Filename:       name,
		FullPath:       absPath,
		Coordinates:    [2]float64{fields.Latitude, fields.Longitude},
		CaptureTime:    fields.CaptureTime,
		Thumbnail:      absThumb,
		Original:       absPath,
		Exif:           fields.Tags,
		ContentHash:    hash,
		PerceptualHash: perceptualHash(img, name),
	}
	return res
}

// perceptualHash fingerprints the decoded pixels. Failures degrade to an
// empty hash; the field is advisory.
func perceptualHash(img image.Image, name string) string {
	h, err := goimagehash.AverageHash(img)
	if err != nil {
		logging.Debug("Perceptual hash failed for %s: %v", name, err)
		return ""
	}
	return h.ToString()
}

// digestHasher is the production Hasher.
type digestHasher struct{}

func (digestHasher) Hash(path string) (string, error) {
	return digest.File(path)
}

// exifParser is the production Parser.
type exifParser struct{}

func (exifParser) Parse(path string) (*geoexif.Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return geoexif.Parse(f)
}
