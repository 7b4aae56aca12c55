// Package thumbnail produces bounded-size JPEG derivatives of source photos.
//
// Decoding prefers libvips when it has been initialized (decode-time
// shrinking keeps memory flat on large originals) and falls back to pure-Go
// decoders otherwise. Output files are named by content digest, so two
// distinct photos can never clobber each other's thumbnail regardless of
// their basenames.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"photo-mapper/internal/logging"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxDimension bounds thumbnail width and height.
	DefaultMaxDimension = 200

	jpegQuality = 80
)

// Generator writes thumbnails into a single directory.
type Generator struct {
	dir    string
	maxDim int
}

// NewGenerator creates the thumbnail directory if needed and returns a
// Generator bounded by maxDim (DefaultMaxDimension when maxDim <= 0).
func NewGenerator(dir string, maxDim int) (*Generator, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory %s: %w", dir, err)
	}
	return &Generator{dir: dir, maxDim: maxDim}, nil
}

// Dir returns the thumbnail output directory.
func (g *Generator) Dir() string { return g.dir }

// Decode loads the image at path, already shrunk to the thumbnail bound
// when the vips fast path is active.
func (g *Generator) Decode(path string) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := loadWithVips(path, g.maxDim, g.maxDim)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s, falling back: %v", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	logging.Debug("imaging.Open failed for %s, trying stdlib decoders: %v", path, err)

	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, openErr)
	}
	defer f.Close()

	img, format, decodeErr := image.Decode(f)
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, decodeErr)
	}
	logging.Debug("Decoded %s as %s", path, format)
	return img, nil
}

// Generate scales img so neither dimension exceeds the configured bound,
// preserving aspect ratio, and writes it as a JPEG named <name>.jpg in the
// generator's directory. It returns the written path.
func (g *Generator) Generate(img image.Image, name string) (string, error) {
	thumb := imaging.Fit(img, g.maxDim, g.maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	path := filepath.Join(g.dir, name+".jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail %s: %w", path, err)
	}
	return path, nil
}
