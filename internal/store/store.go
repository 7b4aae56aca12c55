// Package store holds the persisted photo metadata collection.
//
// A Store is an ordered list of PhotoRecord keyed by content digest, loaded
// from and saved to a single JSON document. Insertion order is preserved and
// later becomes the clustering seed order, so the on-disk order is part of
// the contract. Saving atomically replaces the previous document.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"photo-mapper/internal/geoexif"
	"photo-mapper/internal/logging"
)

// PhotoRecord is one processed media file. Records are immutable once
// created: a changed source file produces a new record under a new digest
// rather than an update of the old one.
type PhotoRecord struct {
	// Filename is the base name, display-only.
	Filename string `json:"filename"`

	// FullPath is the absolute path of the source file.
	FullPath string `json:"full_path"`

	// Coordinates is [latitude, longitude] in signed decimal degrees.
	Coordinates [2]float64 `json:"coordinates"`

	// CaptureTime is the original capture timestamp string, empty and
	// omitted when the source carried none.
	CaptureTime string `json:"capture_time,omitempty"`

	// Thumbnail is the absolute path of the generated thumbnail, owned by
	// the pipeline.
	Thumbnail string `json:"thumbnail"`

	// Original is the absolute path of the source file, kept alongside
	// FullPath for the renderer's popup links.
	Original string `json:"original"`

	// Exif is the normalized tag table.
	Exif geoexif.Map `json:"exif"`

	// ContentHash is the content digest, unique within a store.
	ContentHash string `json:"content_hash"`

	// PerceptualHash is an average-hash fingerprint of the decoded pixels,
	// empty when pixel hashing failed. Used downstream for near-duplicate
	// grouping, never for dedup.
	PerceptualHash string `json:"perceptual_hash,omitempty"`
}

// Latitude returns the record's latitude in decimal degrees.
func (r *PhotoRecord) Latitude() float64 { return r.Coordinates[0] }

// Longitude returns the record's longitude in decimal degrees.
func (r *PhotoRecord) Longitude() float64 { return r.Coordinates[1] }

// Store is an ordered collection of PhotoRecord with a digest index for
// O(1) novelty checks. It is not safe for concurrent mutation; the pipeline
// appends only from its single aggregation step.
type Store struct {
	path    string
	records []PhotoRecord
	hashes  map[string]struct{}
}

// Load reads the store from path. A missing file yields an empty store; an
// unparsable file is reset to empty with a warning, matching the incremental
// semantics of re-running extraction over a previously written output
// directory.
func Load(path string) (*Store, error) {
	s := &Store{
		path:   path,
		hashes: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	var records []PhotoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Warn("Metadata file %s is unreadable, starting empty: %v", path, err)
		return s, nil
	}

	for _, rec := range records {
		if _, dup := s.hashes[rec.ContentHash]; dup {
			logging.Warn("Duplicate content hash %s in metadata file, keeping first record", rec.ContentHash)
			continue
		}
		s.records = append(s.records, rec)
		s.hashes[rec.ContentHash] = struct{}{}
	}

	logging.Info("Loaded %d existing photo records from %s", len(s.records), path)
	return s, nil
}

// Path returns the file this store persists to.
func (s *Store) Path() string { return s.path }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Contains reports whether a record with the given content digest exists.
func (s *Store) Contains(hash string) bool {
	_, ok := s.hashes[hash]
	return ok
}

// Append adds a record, preserving insertion order. It returns false
// without modifying the store when the digest is already present.
func (s *Store) Append(rec PhotoRecord) bool {
	if _, dup := s.hashes[rec.ContentHash]; dup {
		return false
	}
	s.records = append(s.records, rec)
	s.hashes[rec.ContentHash] = struct{}{}
	return true
}

// Records returns the records in insertion order. The slice is shared;
// callers must not mutate it.
func (s *Store) Records() []PhotoRecord {
	return s.records
}

// Save persists the full record list, atomically replacing any previous
// document: the JSON is written to a temporary file in the same directory
// and renamed over the target.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary metadata file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace metadata file: %w", err)
	}

	logging.Info("Metadata saved: %d records in %s", len(s.records), s.path)
	return nil
}
