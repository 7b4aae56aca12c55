package cluster

import (
	"math"
	"testing"

	"photo-mapper/internal/store"
)

// latNorthOf returns the latitude of a point the given number of meters due
// north of (lat, *). Along a meridian the haversine distance reduces to
// EarthRadiusMeters * dLat, so the expected distances are exact geometry.
func latNorthOf(lat, meters float64) float64 {
	return lat + (meters/EarthRadiusMeters)*(180/math.Pi)
}

func recordAt(name string, lat, lon float64) store.PhotoRecord {
	return store.PhotoRecord{
		Filename:    name,
		Coordinates: [2]float64{lat, lon},
		ContentHash: name,
	}
}

func TestHaversine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"identical points", 37.7749, -122.4194, 37.7749, -122.4194, 0, 1e-9},
		{"100m due north at equator", 0, 0, latNorthOf(0, 100), 0, 100, 1e-6},
		{"antipodal on equator", 0, 0, 0, 180, math.Pi * EarthRadiusMeters, 1},
		// San Francisco to Los Angeles, roughly 559 km.
		{"SF to LA", 37.7749, -122.4194, 34.0522, -118.2437, 559000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestGroupThresholdBoundary(t *testing.T) {
	t.Parallel()

	a := recordAt("a", 0, 0)
	b := recordAt("b", latNorthOf(0, 50), 0)
	records := []store.PhotoRecord{a, b}

	// Distance exactly at the threshold merges (<=, not <).
	d := Haversine(a.Latitude(), a.Longitude(), b.Latitude(), b.Longitude())
	merged := Group(records, d)
	if len(merged) != 1 {
		t.Fatalf("distance == threshold: got %d clusters, want 1", len(merged))
	}
	if merged[0].Weight != 2 {
		t.Errorf("merged cluster weight = %d, want 2", merged[0].Weight)
	}

	// Any shortfall in the threshold splits the pair.
	split := Group(records, d-1e-6)
	if len(split) != 2 {
		t.Fatalf("distance > threshold: got %d clusters, want 2", len(split))
	}
	for _, c := range split {
		if c.Weight != 1 {
			t.Errorf("singleton cluster weight = %d, want 1", c.Weight)
		}
	}
}

func TestGroupSeedRelativeMembership(t *testing.T) {
	t.Parallel()

	// Colinear points 0 m, 40 m and 80 m north of the seed with a 50 m
	// threshold: B joins the seed's cluster, C is 80 m from the seed and
	// forms its own singleton even though it is only 40 m from B.
	// Membership is measured against the seed, never other members.
	a := recordAt("a", 0, 0)
	b := recordAt("b", latNorthOf(0, 40), 0)
	c := recordAt("c", latNorthOf(0, 80), 0)

	clusters := Group([]store.PhotoRecord{a, b, c}, 50)

	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}

	first := clusters[0]
	if first.Weight != 2 {
		t.Errorf("first cluster weight = %d, want 2", first.Weight)
	}
	if first.Members[0].Filename != "a" || first.Members[1].Filename != "b" {
		t.Errorf("first cluster members = %v, want [a b]", first.Members)
	}
	if first.Location != a.Coordinates {
		t.Errorf("first cluster location = %v, want seed coordinates %v", first.Location, a.Coordinates)
	}

	second := clusters[1]
	if second.Weight != 1 || second.Members[0].Filename != "c" {
		t.Errorf("second cluster = %+v, want singleton c", second)
	}
	if second.Location != c.Coordinates {
		t.Errorf("second cluster location = %v, want %v", second.Location, c.Coordinates)
	}
}

func TestGroupLateMemberJoinsEarlierSeed(t *testing.T) {
	t.Parallel()

	// The scan covers records after the seed too: a record that appears
	// later in the list but within range of an earlier seed joins that
	// seed's cluster, not a new one.
	a := recordAt("a", 0, 0)
	far := recordAt("far", 1, 1)
	b := recordAt("b", latNorthOf(0, 10), 0)

	clusters := Group([]store.PhotoRecord{a, far, b}, 50)

	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	if clusters[0].Weight != 2 {
		t.Errorf("seed cluster weight = %d, want 2 (a and b)", clusters[0].Weight)
	}
	if clusters[1].Members[0].Filename != "far" {
		t.Errorf("second cluster = %+v, want far", clusters[1])
	}
}

func TestGroupDeterministicOrder(t *testing.T) {
	t.Parallel()

	records := []store.PhotoRecord{
		recordAt("first", 10, 10),
		recordAt("second", 20, 20),
		recordAt("third", 30, 30),
	}

	for run := 0; run < 3; run++ {
		clusters := Group(records, 50)
		if len(clusters) != 3 {
			t.Fatalf("got %d clusters, want 3", len(clusters))
		}
		for i, want := range []string{"first", "second", "third"} {
			if clusters[i].Members[0].Filename != want {
				t.Errorf("run %d: cluster %d seed = %s, want %s",
					run, i, clusters[i].Members[0].Filename, want)
			}
		}
	}
}

func TestGroupEmpty(t *testing.T) {
	t.Parallel()

	if clusters := Group(nil, 50); len(clusters) != 0 {
		t.Errorf("Group(nil) = %v, want empty", clusters)
	}
}

func TestGroupDefaultThreshold(t *testing.T) {
	t.Parallel()

	a := recordAt("a", 0, 0)
	b := recordAt("b", latNorthOf(0, 40), 0)

	// maxDistance <= 0 falls back to the 50 m default, which merges a 40 m
	// pair.
	clusters := Group([]store.PhotoRecord{a, b}, 0)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters with default threshold, want 1", len(clusters))
	}
}

func TestBounds(t *testing.T) {
	t.Parallel()

	records := []store.PhotoRecord{
		recordAt("a", 10, -120),
		recordAt("b", -5, 30),
		recordAt("c", 42, 7),
	}

	box, ok := Bounds(records)
	if !ok {
		t.Fatal("Bounds() ok = false for non-empty records")
	}
	if box.MinLat != -5 || box.MaxLat != 42 || box.MinLon != -120 || box.MaxLon != 30 {
		t.Errorf("Bounds() = %+v", box)
	}

	if _, ok := Bounds(nil); ok {
		t.Error("Bounds(nil) ok = true, want false")
	}
}
