package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/provider"
	"golang.org/x/text/unicode/norm"
)

var wikidataIDPattern = regexp.MustCompile(`^Q\d+$`)

// TransformStats counts drop reasons while building enriched records.
type TransformStats struct {
	Input           int `json:"input"`
	MissingWikidata int `json:"missing_wikidata"`
	MissingCategory int `json:"missing_category"`
	InvalidGeometry int `json:"invalid_geometry"`
	Duplicates      int `json:"duplicates"`
	Accepted        int `json:"accepted"`
}

// TransformRelations joins raw relations with the Commons category map and
// emits enriched records. Rows without a wikidata id, without a category,
// or with invalid geometry are dropped and counted. Duplicate wikidata ids
// keep the first occurrence; callers pass rows ordered by admin level then
// name so the most coarse-grained boundary wins.
func TransformRelations(rows []RawRelation, categories map[string]string) ([]EnrichedBoundary, TransformStats) {
	start := time.Now()
	stats := TransformStats{Input: len(rows)}
	seen := make(map[string]struct{}, len(rows))
	out := make([]EnrichedBoundary, 0, len(rows))

	for _, row := range rows {
		if row.WikidataID == nil || !wikidataIDPattern.MatchString(*row.WikidataID) {
			stats.MissingWikidata++
			continue
		}
		id := *row.WikidataID

		category, ok := categories[id]
		if !ok || category == "" {
			stats.MissingCategory++
			continue
		}

		if row.Geometry == nil || !ValidGeometry(*row.Geometry) {
			stats.InvalidGeometry++
			continue
		}

		if _, dup := seen[id]; dup {
			stats.Duplicates++
			continue
		}
		seen[id] = struct{}{}

		out = append(out, EnrichedBoundary{
			WikidataID:      id,
			CommonsCategory: category,
			AdminLevel:      row.AdminLevel,
			Name:            NormalizeName(row.Name),
			Geom:            *row.Geometry,
		})
	}

	stats.Accepted = len(out)
	provider.LogTransform("importer", stats.Input, stats.Accepted, time.Since(start))
	return out, stats
}

// NormalizeName NFC-normalizes a boundary name and collapses whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

const geometryTolerance = 1e-7

var ringPattern = regexp.MustCompile(`\(([^()]+)\)`)

// ValidGeometry checks stored geometry text: the SRID 4326 prefix, a
// polygon or multipolygon header, and at least one closed ring with four
// or more points.
func ValidGeometry(ewkt string) bool {
	body, ok := strings.CutPrefix(ewkt, "SRID=4326;")
	if !ok {
		return false
	}
	if !strings.HasPrefix(body, "POLYGON(") && !strings.HasPrefix(body, "MULTIPOLYGON(") {
		return false
	}

	for _, match := range ringPattern.FindAllStringSubmatch(body, -1) {
		if validRing(match[1]) {
			return true
		}
	}
	return false
}

func validRing(ring string) bool {
	coords := strings.Split(ring, ",")
	if len(coords) < 4 {
		return false
	}
	points := make([][2]float64, len(coords))
	for i, c := range coords {
		p, ok := parseCoord(c)
		if !ok {
			return false
		}
		points[i] = p
	}
	first, last := points[0], points[len(points)-1]
	if math.Abs(first[0]-last[0]) > geometryTolerance ||
		math.Abs(first[1]-last[1]) > geometryTolerance {
		return false
	}
	// Degenerate placeholders repeat a single point; a real ring spans
	// at least three distinct ones.
	distinct := make(map[[2]float64]struct{}, len(points))
	for _, p := range points {
		distinct[[2]float64{roundCoord(p[0]), roundCoord(p[1])}] = struct{}{}
	}
	return len(distinct) >= 3
}

func roundCoord(v float64) float64 {
	return math.Round(v/geometryTolerance) * geometryTolerance
}

func parseCoord(s string) ([2]float64, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return [2]float64{}, false
	}
	lon, err1 := strconv.ParseFloat(fields[0], 64)
	lat, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		return [2]float64{}, false
	}
	return [2]float64{lon, lat}, true
}
