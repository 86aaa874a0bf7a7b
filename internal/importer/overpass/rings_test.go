package overpass

import (
	"testing"
)

func ringClosed(t *testing.T, ring []Point) {
	t.Helper()
	if len(ring) < 4 {
		t.Fatalf("ring too short: %v", ring)
	}
	if !ptEq(ring[0], ring[len(ring)-1]) {
		t.Errorf("ring not closed: first=%v last=%v", ring[0], ring[len(ring)-1])
	}
}

// Three fragments, one reversed relative to traversal order, must merge
// into a single closed ring.
func TestMergeRings_FragmentsWithReversal(t *testing.T) {
	fragments := [][]Point{
		{{0, 0}, {1, 0}},                 // A
		{{2, 0}, {1, 0}},                 // B, reversed
		{{2, 0}, {2, 1}, {0, 1}, {0, 0}}, // C
	}

	rings := mergeRings(fragments)
	if len(rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(rings))
	}
	ring := rings[0]
	ringClosed(t, ring)

	// All five distinct points must survive the merge.
	want := []Point{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {0, 1}}
	for _, p := range want {
		found := false
		for _, q := range ring {
			if ptEq(p, q) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("merged ring missing point %v: %v", p, ring)
		}
	}
	if len(ring) != len(want)+1 {
		t.Errorf("expected %d points incl. closure, got %d: %v", len(want)+1, len(ring), ring)
	}
}

func TestMergeRings_TwoSeparateRings(t *testing.T) {
	fragments := [][]Point{
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
		{{5, 5}, {6, 5}, {6, 6}, {5, 6}, {5, 5}},
	}

	rings := mergeRings(fragments)
	if len(rings) != 2 {
		t.Fatalf("expected 2 rings, got %d", len(rings))
	}
	for _, ring := range rings {
		ringClosed(t, ring)
	}
}

func TestMergeRings_ShortFragmentDiscarded(t *testing.T) {
	fragments := [][]Point{
		{{0, 0}, {1, 1}}, // degenerate: two points, no closure possible
	}
	if rings := mergeRings(fragments); len(rings) != 0 {
		t.Errorf("expected no rings, got %v", rings)
	}
}

func TestMergeRings_ToleranceJoin(t *testing.T) {
	// Endpoints differ by less than the tolerance and must still join.
	fragments := [][]Point{
		{{0, 0}, {1, 0}},
		{{1, 0.00000005}, {1, 1}},
		{{1, 1}, {0, 1}, {0, 0}},
	}
	rings := mergeRings(fragments)
	if len(rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(rings))
	}
	ringClosed(t, rings[0])
}

func TestPointInRing(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

	cases := []struct {
		p    Point
		want bool
	}{
		{Point{5, 5}, true},
		{Point{2, 8}, true},
		{Point{15, 5}, false},
		{Point{-1, -1}, false},
	}
	for _, tc := range cases {
		if got := pointInRing(tc.p, square); got != tc.want {
			t.Errorf("pointInRing(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestRemoveCollinear(t *testing.T) {
	// Midpoints on the square's edges are collinear and must go.
	ring := []Point{
		{0, 0}, {0.5, 0}, {1, 0}, {1, 0.5}, {1, 1}, {0, 1}, {0, 0},
	}
	got := removeCollinear(ring)
	want := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !ptEq(got[i], want[i]) {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCapRingPoints(t *testing.T) {
	// A ring with 1001 points must come back with at most 501 and keep
	// both endpoints.
	n := 1001
	ring := make([]Point, n)
	for i := range ring {
		ring[i] = Point{Lat: float64(i), Lon: float64(i)}
	}
	ring[n-1] = ring[0]

	got := capRingPoints(ring)
	if len(got) > maxRingPoints+1 {
		t.Errorf("capped ring has %d points, want <= %d", len(got), maxRingPoints+1)
	}
	if !ptEq(got[0], ring[0]) {
		t.Errorf("first point changed: %v", got[0])
	}
	if !ptEq(got[len(got)-1], ring[n-1]) {
		t.Errorf("final point not preserved: %v", got[len(got)-1])
	}
}

func TestCapRingPoints_SmallRingUntouched(t *testing.T) {
	ring := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	got := capRingPoints(ring)
	if len(got) != len(ring) {
		t.Errorf("small ring modified: %v", got)
	}
}
