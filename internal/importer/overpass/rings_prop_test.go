package overpass

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// convexRing builds a closed ring of n distinct points on a circle.
func convexRing(n int) []Point {
	ring := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, Point{
			Lat: 10 * math.Sin(angle),
			Lon: 10 * math.Cos(angle),
		})
	}
	ring = append(ring, ring[0])
	return ring
}

// fragment splits a closed ring into consecutive way fragments at the given
// cut sizes, optionally reversing each fragment.
func fragment(ring []Point, cuts []int, reverse []bool) [][]Point {
	var fragments [][]Point
	start := 0
	for i, size := range cuts {
		end := start + size
		if end > len(ring)-1 {
			end = len(ring) - 1
		}
		if end <= start {
			break
		}
		frag := append([]Point(nil), ring[start:end+1]...)
		if i < len(reverse) && reverse[i] {
			frag = orient(frag, true)
		}
		fragments = append(fragments, frag)
		start = end
	}
	if start < len(ring)-1 {
		fragments = append(fragments, append([]Point(nil), ring[start:]...))
	}
	return fragments
}

// Splitting any ring into fragments, reversing some, must merge back into
// exactly one closed ring containing every original point.
func TestMergeRingsReconstructsFragmentedRing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("fragmented ring merges closed", prop.ForAll(
		func(n int, cutSeed []int, reverse []bool) bool {
			ring := convexRing(n)

			cuts := make([]int, len(cutSeed))
			for i, c := range cutSeed {
				cuts[i] = c%4 + 1
			}
			fragments := fragment(ring, cuts, reverse)

			merged := mergeRings(fragments)
			if len(merged) != 1 {
				return false
			}
			out := merged[0]
			if !ptEq(out[0], out[len(out)-1]) {
				return false
			}
			for _, p := range ring[:len(ring)-1] {
				found := false
				for _, q := range out {
					if ptEq(p, q) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
		gen.IntRange(3, 40),
		gen.SliceOf(gen.IntRange(0, 100)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("merged rings are always closed", prop.ForAll(
		func(n int) bool {
			ring := convexRing(n)
			fragments := fragment(ring, []int{2, 3, 2}, []bool{true, false, true})
			for _, out := range mergeRings(fragments) {
				if !ptEq(out[0], out[len(out)-1]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(4, 200),
	))

	properties.TestingRun(t)
}
