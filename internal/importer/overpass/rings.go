package overpass

import "math"

// coordTolerance is the absolute tolerance for coordinate equality when
// joining way fragments and testing ring closure.
const coordTolerance = 1e-7

// maxRingPoints caps emitted ring size; oversize rings are uniformly sampled.
const maxRingPoints = 500

func ptEq(a, b Point) bool {
	return math.Abs(a.Lat-b.Lat) <= coordTolerance && math.Abs(a.Lon-b.Lon) <= coordTolerance
}

// mergeRings joins unordered, possibly-reversed way fragments into closed
// rings. Fragments are consumed greedily: a seed fragment is extended at its
// tail, then at its head, reversing fragments as needed, until its connected
// component is exhausted. Rings with fewer than 3 points before closure are
// discarded.
func mergeRings(fragments [][]Point) [][]Point {
	used := make([]bool, len(fragments))
	var rings [][]Point

	for seed := range fragments {
		if used[seed] || len(fragments[seed]) == 0 {
			continue
		}
		used[seed] = true
		ring := append([]Point(nil), fragments[seed]...)

		// Extend at the tail until stuck.
		for {
			j, reversed := findAttachable(fragments, used, ring[len(ring)-1])
			if j < 0 {
				break
			}
			used[j] = true
			ring = append(ring, orient(fragments[j], reversed)[1:]...)
		}

		// Then at the head. Tail stays stuck: prepending never moves it.
		for {
			j, reversed := findAttachable(fragments, used, ring[0])
			if j < 0 {
				break
			}
			used[j] = true
			// Attach so the fragment ends at the current head, then drop
			// the duplicated joint point.
			frag := orient(fragments[j], !reversed)
			ring = append(frag[:len(frag)-1:len(frag)-1], ring...)
		}

		if len(ring) < 3 {
			continue
		}
		if !ptEq(ring[0], ring[len(ring)-1]) {
			ring = append(ring, ring[0])
		}
		rings = append(rings, ring)
	}

	return rings
}

// findAttachable returns the index of an unused fragment with an endpoint
// equal to at, and whether it must be reversed so its first point matches.
func findAttachable(fragments [][]Point, used []bool, at Point) (int, bool) {
	for j, frag := range fragments {
		if used[j] || len(frag) == 0 {
			continue
		}
		if ptEq(frag[0], at) {
			return j, false
		}
		if ptEq(frag[len(frag)-1], at) {
			return j, true
		}
	}
	return -1, false
}

func orient(frag []Point, reversed bool) []Point {
	if !reversed {
		return frag
	}
	out := make([]Point, len(frag))
	for i, p := range frag {
		out[len(frag)-1-i] = p
	}
	return out
}

// pointInRing is the standard ray-casting point-in-polygon test.
func pointInRing(p Point, ring []Point) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Lat > p.Lat) != (pj.Lat > p.Lat) &&
			p.Lon < (pj.Lon-pi.Lon)*(p.Lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lon {
			inside = !inside
		}
	}
	return inside
}

// removeCollinear drops interior points that add no area, using a
// cross-product test against coordTolerance. The ring stays closed.
func removeCollinear(ring []Point) []Point {
	if len(ring) < 5 {
		return ring
	}
	out := make([]Point, 0, len(ring))
	out = append(out, ring[0])
	for i := 1; i < len(ring)-1; i++ {
		prev := out[len(out)-1]
		cur := ring[i]
		next := ring[i+1]
		cross := (cur.Lon-prev.Lon)*(next.Lat-cur.Lat) - (cur.Lat-prev.Lat)*(next.Lon-cur.Lon)
		if math.Abs(cross) <= coordTolerance {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, ring[len(ring)-1])
	if len(out) < 4 {
		return ring
	}
	return out
}

// capRingPoints bounds a ring to at most maxRingPoints uniformly sampled
// points plus the final (closing) point, which is always kept.
func capRingPoints(ring []Point) []Point {
	n := len(ring)
	if n <= maxRingPoints {
		return ring
	}
	step := (n + maxRingPoints - 1) / maxRingPoints
	out := make([]Point, 0, maxRingPoints+1)
	for i := 0; i < n-1; i += step {
		out = append(out, ring[i])
	}
	out = append(out, ring[n-1])
	return out
}
