package overpass

import (
	"fmt"
	"strconv"
	"strings"
)

// queryTimeout is the server-side timeout declared on every query, in seconds.
const queryTimeout = 90

// areaIDOffset converts a relation id into an Overpass area id.
const areaIDOffset = 3_600_000_000

// AreaID returns the Overpass area id for a boundary relation.
func AreaID(relationID int64) int64 {
	return areaIDOffset + relationID
}

// CountryRootQuery selects the ids of all administrative relations at the
// given level tagged with the ISO3 country code.
func CountryRootQuery(iso3 string, level int) string {
	return fmt.Sprintf(`[out:json][timeout:%d];
relation["boundary"="administrative"]["admin_level"="%d"]["ISO3166-1:alpha3"="%s"];
out ids;`, queryTimeout, level, iso3)
}

// ChildrenQuery selects the ids of administrative relations at the given
// level spatially contained in the parent relation's area.
func ChildrenQuery(parentRelationID int64, level int) string {
	return fmt.Sprintf(`[out:json][timeout:%d];
area(%d)->.parent;
relation["boundary"="administrative"]["admin_level"="%d"](area.parent);
out ids;`, queryTimeout, AreaID(parentRelationID), level)
}

// GeometryQuery selects the given relations plus every way they reference,
// with full geometry.
func GeometryQuery(relationIDs []int64) string {
	ids := make([]string, len(relationIDs))
	for i, id := range relationIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf(`[out:json][timeout:%d];
relation(id:%s);
(._; way(r););
out geom;`, queryTimeout, strings.Join(ids, ","))
}
