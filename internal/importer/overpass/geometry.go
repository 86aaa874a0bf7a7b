package overpass

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/provider"
)

const (
	// GeometryBatchSize is the number of relations fetched per query.
	GeometryBatchSize = 100

	// geometryBatchDelay paces consecutive geometry queries.
	geometryBatchDelay = 250 * time.Millisecond
)

// placeholderGeometry is stored when a relation's ways cannot be assembled
// into any ring. It fails validation downstream and is filtered out there.
const placeholderGeometry = "SRID=4326;POLYGON((0 0,0 0,0 0,0 0))"

var wikidataIDPattern = regexp.MustCompile(`^Q\d+$`)

// FetchBoundaries fetches and assembles geometry for the given relations in
// paced batches. Any batch failure aborts the whole call: a partially
// fetched level must not be persisted as if complete.
func (c *Client) FetchBoundaries(ctx context.Context, relationIDs []int64) ([]Boundary, error) {
	var boundaries []Boundary

	totalBatches := (len(relationIDs) + GeometryBatchSize - 1) / GeometryBatchSize
	for i := 0; i < len(relationIDs); i += GeometryBatchSize {
		end := i + GeometryBatchSize
		if end > len(relationIDs) {
			end = len(relationIDs)
		}
		batch := relationIDs[i:end]
		provider.LogBatch("overpass", i/GeometryBatchSize+1, totalBatches, len(batch))

		resp, err := c.Query(ctx, GeometryQuery(batch))
		if err != nil {
			return nil, fmt.Errorf("geometry batch %d: %w", i/GeometryBatchSize+1, err)
		}
		boundaries = append(boundaries, parseBoundaries(resp)...)

		if end < len(relationIDs) {
			select {
			case <-time.After(geometryBatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return boundaries, nil
}

// parseBoundaries turns one geometry response into boundary records.
// Relations without a name or admin_level tag are dropped entirely.
func parseBoundaries(resp *Response) []Boundary {
	ways := make(map[int64][]Point)
	for _, el := range resp.Elements {
		if el.Type == "way" && len(el.Geometry) > 0 {
			ways[el.ID] = el.Geometry
		}
	}

	var out []Boundary
	for _, el := range resp.Elements {
		if el.Type != "relation" {
			continue
		}

		name := el.Tags["name"]
		levelStr := el.Tags["admin_level"]
		if name == "" || levelStr == "" {
			continue
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			continue
		}

		var wikidataID *string
		if wd := el.Tags["wikidata"]; wikidataIDPattern.MatchString(wd) {
			wikidataID = &wd
		}

		var outers, inners [][]Point
		for _, m := range el.Members {
			if m.Type != "way" {
				continue
			}
			pts := ways[m.Ref]
			if len(pts) == 0 {
				pts = m.Geometry
			}
			if len(pts) == 0 {
				continue
			}
			// Empty role is treated as outer.
			if m.Role == "inner" {
				inners = append(inners, pts)
			} else {
				outers = append(outers, pts)
			}
		}

		geometry := assembleGeometry(el.ID, outers, inners)

		out = append(out, Boundary{
			RelationID: el.ID,
			Name:       name,
			AdminLevel: level,
			WikidataID: wikidataID,
			Tags:       el.Tags,
			Geometry:   geometry,
		})
	}
	return out
}

// assembleGeometry merges fragments into rings, pairs holes with the outer
// ring containing them, simplifies, and serialises to EWKT.
func assembleGeometry(relationID int64, outerFragments, innerFragments [][]Point) string {
	outers := mergeRings(outerFragments)
	inners := mergeRings(innerFragments)

	if len(outers) == 0 {
		if len(inners) > 0 {
			log.Printf("[overpass] relation %d has only inner rings, geometry discarded", relationID)
		}
		return placeholderGeometry
	}

	// Holes attach to the first outer ring that contains their first point.
	holes := make([][][]Point, len(outers))
	for _, inner := range inners {
		attached := false
		for i, outer := range outers {
			if pointInRing(inner[0], outer) {
				holes[i] = append(holes[i], inner)
				attached = true
				break
			}
		}
		if !attached {
			log.Printf("[overpass] relation %d: inner ring matches no outer ring, dropped", relationID)
		}
	}

	polygons := make([][][]Point, 0, len(outers))
	for i, outer := range outers {
		rings := [][]Point{simplifyRing(outer)}
		for _, hole := range holes[i] {
			rings = append(rings, simplifyRing(hole))
		}
		polygons = append(polygons, rings)
	}

	if len(polygons) == 1 {
		return "SRID=4326;" + polygonText(polygons[0])
	}
	parts := make([]string, len(polygons))
	for i, poly := range polygons {
		parts[i] = strings.TrimPrefix(polygonText(poly), "POLYGON")
	}
	return "SRID=4326;MULTIPOLYGON(" + strings.Join(parts, ",") + ")"
}

func simplifyRing(ring []Point) []Point {
	return capRingPoints(removeCollinear(ring))
}

func polygonText(rings [][]Point) string {
	parts := make([]string, len(rings))
	for i, ring := range rings {
		coords := make([]string, len(ring))
		for j, p := range ring {
			coords[j] = strconv.FormatFloat(p.Lon, 'f', -1, 64) + " " + strconv.FormatFloat(p.Lat, 'f', -1, 64)
		}
		parts[i] = "(" + strings.Join(coords, ",") + ")"
	}
	return "POLYGON(" + strings.Join(parts, ",") + ")"
}
