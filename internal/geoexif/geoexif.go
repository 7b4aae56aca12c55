// Package geoexif decodes EXIF metadata from photo files and normalizes it
// into serializable records for the metadata store.
//
// A photo contributes to the geospatial product only if it carries a complete
// GPS block: latitude and longitude stored as degree/minute/second rational
// triples plus hemisphere reference letters. Files without EXIF or without
// GPS are skipped silently; that is expected absence, not an error.
package geoexif

import (
	"io"
	"strings"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"

	"photo-mapper/internal/logging"
)

// Fields holds the extracted, normalized metadata for one photo.
type Fields struct {
	// Latitude and Longitude in signed decimal degrees.
	Latitude  float64
	Longitude float64

	// CaptureTime is the original capture timestamp as recorded in the
	// source, empty when no timestamp tag is present.
	CaptureTime string

	// Tags is the full tag table, values normalized to the closed
	// Value set. GPS tags are grouped under a nested "GPSInfo" map.
	Tags Map
}

// Hemisphere references that negate a coordinate. The ASCII letters come
// from the EXIF specification; the localized labels appear in tag tables
// written by some phone firmwares.
var (
	southRefs = map[string]bool{"S": true, "南纬": true}
	westRefs  = map[string]bool{"W": true, "西经": true}
)

var registerParsers sync.Once

// Parse reads the EXIF block from r and returns the extracted fields.
//
// It returns (nil, nil) when the file carries no usable geolocation: no EXIF
// block, no GPS sub-block, or a missing coordinate component. Callers must
// treat that as "skip this file", not as a failure. A non-nil error means
// the tag table was present but malformed.
func Parse(r io.Reader) (*Fields, error) {
	registerParsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	x, err := exif.Decode(r)
	if err != nil {
		// goexif does not distinguish "no EXIF present" from a truncated
		// table; both exclude the file from the geospatial product.
		logging.Debug("geoexif: no decodable EXIF block: %v", err)
		return nil, nil
	}

	c := &tagCollector{tags: make(Map), gps: make(Map)}
	if err := x.Walk(c); err != nil {
		return nil, err
	}
	if len(c.gps) > 0 {
		c.tags["GPSInfo"] = c.gps
	}

	lat, ok, err := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef, southRefs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	lon, ok, err := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef, westRefs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, &CoordinateRangeError{Latitude: lat, Longitude: lon}
	}

	return &Fields{
		Latitude:    lat,
		Longitude:   lon,
		CaptureTime: captureTime(x),
		Tags:        c.tags,
	}, nil
}

// CoordinateRangeError reports a GPS block whose decoded coordinates fall
// outside the valid range.
type CoordinateRangeError struct {
	Latitude  float64
	Longitude float64
}

func (e *CoordinateRangeError) Error() string {
	return "geoexif: coordinates out of range"
}

// coordinate reads one GPS coordinate as a degree/minute/second triple and
// converts it to signed decimal degrees. ok is false when the component is
// absent.
func coordinate(x *exif.Exif, field, refField exif.FieldName, negating map[string]bool) (float64, bool, error) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false, nil
	}
	if int(tag.Count) < 3 {
		return 0, false, &dmsError{field: string(field)}
	}

	var dms [3]float64
	for i := range dms {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, false, &dmsError{field: string(field)}
		}
		if den != 0 {
			dms[i] = float64(num) / float64(den)
		}
	}

	deg := decimalDegrees(dms[0], dms[1], dms[2])

	// An absent reference tag means no negation, not a missing coordinate;
	// the photo stays in the product with the coordinate read as positive.
	refTag, err := x.Get(refField)
	if err != nil {
		return deg, true, nil
	}
	ref, err := refTag.StringVal()
	if err != nil {
		ref = string(refTag.Val)
	}
	if negating[strings.TrimSpace(strings.Trim(ref, "\x00"))] {
		deg = -deg
	}

	return deg, true, nil
}

type dmsError struct {
	field string
}

func (e *dmsError) Error() string {
	return "geoexif: malformed degree/minute/second triple in " + e.field
}

// decimalDegrees converts a DMS triple to decimal degrees.
func decimalDegrees(deg, min, sec float64) float64 {
	return deg + min/60.0 + sec/3600.0
}

// captureTime returns the first present capture timestamp, preferring the
// original capture tag over digitization and file-modification times.
func captureTime(x *exif.Exif) string {
	for _, name := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime} {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		s = strings.TrimSpace(strings.Trim(s, "\x00\""))
		if s != "" {
			return s
		}
	}
	return ""
}

// tagCollector accumulates the walked tag table, splitting GPS tags into
// their own nested map to mirror the persisted layout.
type tagCollector struct {
	tags Map
	gps  Map
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	v := normalizeTag(tag)
	if strings.HasPrefix(string(name), "GPS") {
		c.gps[string(name)] = v
	} else {
		c.tags[string(name)] = v
	}
	return nil
}

// normalizeTag converts a raw TIFF tag into the closed Value set. Rational
// encodings reduce to floats; undefined and unreadable payloads degrade to
// strings via the byte fallback. This function never fails.
func normalizeTag(tag *tiff.Tag) Value {
	n := int(tag.Count)

	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return normalizeBytes(tag.Val)
		}
		return String(strings.Trim(s, "\x00"))

	case tiff.IntVal:
		if n == 1 {
			v, err := tag.Int64(0)
			if err != nil {
				return normalizeBytes(tag.Val)
			}
			return Number(v)
		}
		list := make(List, 0, n)
		for i := 0; i < n; i++ {
			v, err := tag.Int64(i)
			if err != nil {
				return normalizeBytes(tag.Val)
			}
			list = append(list, Number(v))
		}
		return list

	case tiff.FloatVal:
		if n == 1 {
			v, err := tag.Float(0)
			if err != nil {
				return normalizeBytes(tag.Val)
			}
			return Number(v)
		}
		list := make(List, 0, n)
		for i := 0; i < n; i++ {
			v, err := tag.Float(i)
			if err != nil {
				return normalizeBytes(tag.Val)
			}
			list = append(list, Number(v))
		}
		return list

	case tiff.RatVal:
		if n == 1 {
			return Number(ratFloat(tag, 0))
		}
		list := make(List, 0, n)
		for i := 0; i < n; i++ {
			list = append(list, Number(ratFloat(tag, i)))
		}
		return list

	default:
		// UndefVal and OtherVal payloads are raw bytes.
		return normalizeBytes(tag.Val)
	}
}

func ratFloat(tag *tiff.Tag, i int) float64 {
	num, den, err := tag.Rat2(i)
	if err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
