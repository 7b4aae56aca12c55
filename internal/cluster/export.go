package cluster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"photo-mapper/internal/store"
)

// Document is the cluster list handed to the external map renderer,
// together with the viewport envelope of all records.
type Document struct {
	Bounds   *BoundingBox `json:"bounds,omitempty"`
	Clusters []Cluster    `json:"clusters"`
}

// BuildDocument groups records and packages the result for the renderer.
func BuildDocument(records []store.PhotoRecord, maxDistance float64) Document {
	doc := Document{
		Clusters: Group(records, maxDistance),
	}
	if box, ok := Bounds(records); ok {
		doc.Bounds = &box
	}
	return doc
}

// WriteDocument persists the renderer document to path, atomically
// replacing any previous version.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cluster document: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".clusters-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary cluster file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cluster document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cluster file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cluster file: %w", err)
	}
	return nil
}
