//go:build !cgo

package thumbnail

import (
	"errors"
	"image"

	"photo-mapper/internal/logging"
)

// InitVips is a no-op when built without cgo; the pipeline decodes with
// pure-Go fallbacks instead.
func InitVips() {
	logging.Info("libvips support not compiled in (cgo disabled); using pure-Go decoders")
}

// ShutdownVips is a no-op when built without cgo.
func ShutdownVips() {}

// IsVipsAvailable reports whether the vips fast path can be used.
func IsVipsAvailable() bool { return false }

// loadWithVips always fails when built without cgo, so callers fall back
// to the pure-Go decode path.
func loadWithVips(path string, targetWidth, targetHeight int) (image.Image, error) {
	return nil, errors.New("vips support not compiled in")
}
