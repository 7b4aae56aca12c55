// Package cluster groups geotagged photo records into map-ready location
// clusters.
//
// The algorithm is a deterministic greedy pass, not k-means or DBSCAN:
// records are walked in stored order, each unprocessed record seeds a new
// cluster, and every remaining unprocessed record within the distance
// threshold of the seed joins it. Membership is always measured against the
// seed, never transitively against other members, so a chain of photos can
// split across clusters even when adjacent links are within range. Cluster
// identities are ephemeral; nothing about them survives between runs.
package cluster

import (
	"math"

	"photo-mapper/internal/store"
)

const (
	// EarthRadiusMeters is the mean spherical-Earth radius used by the
	// haversine distance. No ellipsoidal correction is applied.
	EarthRadiusMeters = 6371000.0

	// DefaultMaxDistanceMeters is the default grouping threshold.
	DefaultMaxDistanceMeters = 50.0
)

// Member is the per-photo payload handed to the map renderer.
type Member struct {
	Filename    string `json:"filename"`
	Thumbnail   string `json:"thumbnail"`
	Original    string `json:"original"`
	CaptureTime string `json:"capture_time,omitempty"`
}

// Cluster is a non-empty group of records sharing a representative
// location: the seed's coordinates. Weight is the member count; a weight of
// 1 marks a singleton the renderer styles differently.
type Cluster struct {
	Location [2]float64 `json:"location"`
	Weight   int        `json:"weight"`
	Members  []Member   `json:"members"`
}

// Haversine returns the great-circle distance in meters between two points
// given in decimal degrees, on a spherical Earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Group partitions records into clusters using the given distance threshold
// in meters (DefaultMaxDistanceMeters when maxDistance <= 0). A record
// exactly at the threshold joins the cluster. Output order is the order in
// which seeds are encountered, so a fixed input order yields identical
// clusters.
func Group(records []store.PhotoRecord, maxDistance float64) []Cluster {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistanceMeters
	}

	processed := make([]bool, len(records))
	var clusters []Cluster

	for i := range records {
		if processed[i] {
			continue
		}
		seed := &records[i]
		processed[i] = true

		c := Cluster{
			Location: seed.Coordinates,
			Members:  []Member{member(seed)},
		}

		for j := range records {
			if processed[j] {
				continue
			}
			rec := &records[j]
			d := Haversine(seed.Latitude(), seed.Longitude(), rec.Latitude(), rec.Longitude())
			if d <= maxDistance {
				c.Members = append(c.Members, member(rec))
				processed[j] = true
			}
		}

		c.Weight = len(c.Members)
		clusters = append(clusters, c)
	}

	return clusters
}

func member(rec *store.PhotoRecord) Member {
	return Member{
		Filename:    rec.Filename,
		Thumbnail:   rec.Thumbnail,
		Original:    rec.Original,
		CaptureTime: rec.CaptureTime,
	}
}

// BoundingBox is the coordinate envelope of every clustered record, used by
// the renderer to fit the initial viewport.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Bounds computes the coordinate envelope of records. ok is false when
// records is empty.
func Bounds(records []store.PhotoRecord) (box BoundingBox, ok bool) {
	if len(records) == 0 {
		return BoundingBox{}, false
	}

	box = BoundingBox{
		MinLat: records[0].Latitude(),
		MaxLat: records[0].Latitude(),
		MinLon: records[0].Longitude(),
		MaxLon: records[0].Longitude(),
	}
	for i := 1; i < len(records); i++ {
		lat, lon := records[i].Latitude(), records[i].Longitude()
		box.MinLat = math.Min(box.MinLat, lat)
		box.MaxLat = math.Max(box.MaxLat, lat)
		box.MinLon = math.Min(box.MinLon, lon)
		box.MaxLon = math.Max(box.MaxLon, lon)
	}
	return box, true
}
