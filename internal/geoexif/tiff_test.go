package geoexif

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
	"testing"
)

// Minimal little-endian TIFF builder for feeding Parse real tag tables.

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	tagGPSLatitudeRef  = 0x0001
	tagGPSLatitude     = 0x0002
	tagGPSLongitudeRef = 0x0003
	tagGPSLongitude    = 0x0004
	tagMake            = 0x010f
	tagDateTime        = 0x0132
	tagGPSIFDPointer   = 0x8825
)

type tiffField struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func asciiField(tag uint16, s string) tiffField {
	v := append([]byte(s), 0)
	return tiffField{tag: tag, typ: typeASCII, count: uint32(len(v)), value: v}
}

func longField(tag uint16, v uint32) tiffField {
	return tiffField{tag: tag, typ: typeLong, count: 1, value: binary.LittleEndian.AppendUint32(nil, v)}
}

// rationalField encodes numerator/denominator pairs.
func rationalField(tag uint16, rats ...[2]uint32) tiffField {
	buf := make([]byte, 0, len(rats)*8)
	for _, r := range rats {
		buf = binary.LittleEndian.AppendUint32(buf, r[0])
		buf = binary.LittleEndian.AppendUint32(buf, r[1])
	}
	return tiffField{tag: tag, typ: typeRational, count: uint32(len(rats)), value: buf}
}

// dmsField encodes a whole-number degree/minute/second triple.
func dmsField(tag uint16, deg, min, sec uint32) tiffField {
	return rationalField(tag, [2]uint32{deg, 1}, [2]uint32{min, 1}, [2]uint32{sec, 1})
}

// encodeIFD lays out one IFD placed at offset: entry table, zero next-IFD
// pointer, then the oversize values the entries point at.
func encodeIFD(fields []tiffField, offset uint32) []byte {
	sort.Slice(fields, func(i, j int) bool { return fields[i].tag < fields[j].tag })

	tableLen := uint32(2 + 12*len(fields) + 4)
	table := binary.LittleEndian.AppendUint16(nil, uint16(len(fields)))
	var overflow []byte
	for _, f := range fields {
		table = binary.LittleEndian.AppendUint16(table, f.tag)
		table = binary.LittleEndian.AppendUint16(table, f.typ)
		table = binary.LittleEndian.AppendUint32(table, f.count)
		if len(f.value) <= 4 {
			inline := make([]byte, 4)
			copy(inline, f.value)
			table = append(table, inline...)
		} else {
			table = binary.LittleEndian.AppendUint32(table, offset+tableLen+uint32(len(overflow)))
			overflow = append(overflow, f.value...)
		}
	}
	table = binary.LittleEndian.AppendUint32(table, 0)
	return append(table, overflow...)
}

// buildTIFF assembles a TIFF with the given IFD0 fields and, when gps is
// non-nil, a GPS sub-IFD reached through the standard pointer tag.
func buildTIFF(ifd0, gps []tiffField) []byte {
	header := []byte{'I', 'I', 0x2a, 0, 8, 0, 0, 0}

	if gps != nil {
		// The pointer value depends on IFD0's encoded size, so size a
		// probe first.
		probe := append(append([]tiffField{}, ifd0...), longField(tagGPSIFDPointer, 0))
		gpsOffset := 8 + uint32(len(encodeIFD(probe, 8)))
		ifd0 = append(append([]tiffField{}, ifd0...), longField(tagGPSIFDPointer, gpsOffset))
	}

	out := append(header, encodeIFD(ifd0, 8)...)
	if gps != nil {
		out = append(out, encodeIFD(gps, uint32(len(out)))...)
	}
	return out
}

func TestParseGPSPayload(t *testing.T) {
	t.Parallel()

	data := buildTIFF(
		[]tiffField{
			asciiField(tagMake, "MockBrand"),
			asciiField(tagDateTime, "2023:06:15 10:30:00"),
		},
		[]tiffField{
			asciiField(tagGPSLatitudeRef, "S"),
			dmsField(tagGPSLatitude, 40, 30, 0),
			asciiField(tagGPSLongitudeRef, "W"),
			dmsField(tagGPSLongitude, 10, 15, 0),
		})

	fields, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if fields == nil {
		t.Fatal("Parse() = nil for a payload with a full GPS block")
	}

	if math.Abs(fields.Latitude-(-40.5)) > epsilon {
		t.Errorf("Latitude = %v, want -40.5", fields.Latitude)
	}
	if math.Abs(fields.Longitude-(-10.25)) > epsilon {
		t.Errorf("Longitude = %v, want -10.25", fields.Longitude)
	}
	if fields.CaptureTime != "2023:06:15 10:30:00" {
		t.Errorf("CaptureTime = %q", fields.CaptureTime)
	}

	if got := fields.Tags["Make"]; !valueEqual(got, String("MockBrand")) {
		t.Errorf("Tags[Make] = %#v", got)
	}
	gps, ok := fields.Tags["GPSInfo"].(Map)
	if !ok {
		t.Fatalf("Tags[GPSInfo] = %#v, want nested Map", fields.Tags["GPSInfo"])
	}
	if !valueEqual(gps["GPSLatitudeRef"], String("S")) {
		t.Errorf("GPSInfo[GPSLatitudeRef] = %#v", gps["GPSLatitudeRef"])
	}
	if !valueEqual(gps["GPSLatitude"], List{Number(40), Number(30), Number(0)}) {
		t.Errorf("GPSInfo[GPSLatitude] = %#v", gps["GPSLatitude"])
	}
}

func TestParseNorthEastStaysPositive(t *testing.T) {
	t.Parallel()

	data := buildTIFF(nil, []tiffField{
		asciiField(tagGPSLatitudeRef, "N"),
		dmsField(tagGPSLatitude, 40, 30, 0),
		asciiField(tagGPSLongitudeRef, "E"),
		dmsField(tagGPSLongitude, 40, 30, 0),
	})

	fields, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if fields == nil {
		t.Fatal("Parse() = nil")
	}
	if math.Abs(fields.Latitude-40.5) > epsilon || math.Abs(fields.Longitude-40.5) > epsilon {
		t.Errorf("coordinates = (%v, %v), want (40.5, 40.5)", fields.Latitude, fields.Longitude)
	}
}

func TestParseMissingRefKeepsCoordinate(t *testing.T) {
	t.Parallel()

	// DMS triples without hemisphere reference tags: the coordinate reads
	// as positive, the photo is not excluded.
	data := buildTIFF(nil, []tiffField{
		dmsField(tagGPSLatitude, 40, 30, 0),
		dmsField(tagGPSLongitude, 10, 15, 0),
	})

	fields, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if fields == nil {
		t.Fatal("Parse() = nil for a payload with GPS triples but no reference tags")
	}
	if math.Abs(fields.Latitude-40.5) > epsilon {
		t.Errorf("Latitude = %v, want 40.5", fields.Latitude)
	}
	if math.Abs(fields.Longitude-10.25) > epsilon {
		t.Errorf("Longitude = %v, want 10.25", fields.Longitude)
	}
}

func TestParseExifWithoutGPS(t *testing.T) {
	t.Parallel()

	// A full tag table with no GPS block is expected absence.
	data := buildTIFF([]tiffField{
		asciiField(tagMake, "MockBrand"),
		asciiField(tagDateTime, "2023:06:15 10:30:00"),
	}, nil)

	fields, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if fields != nil {
		t.Fatalf("Parse() = %+v, want nil for EXIF without GPS", fields)
	}
}

func TestParseTruncatedTriple(t *testing.T) {
	t.Parallel()

	// A two-element latitude is a malformed table, not expected absence.
	data := buildTIFF(nil, []tiffField{
		asciiField(tagGPSLatitudeRef, "N"),
		rationalField(tagGPSLatitude, [2]uint32{40, 1}, [2]uint32{30, 1}),
		asciiField(tagGPSLongitudeRef, "E"),
		dmsField(tagGPSLongitude, 40, 30, 0),
	})

	if _, err := Parse(bytes.NewReader(data)); err == nil {
		t.Fatal("expected error for a truncated degree/minute/second triple")
	}
}
