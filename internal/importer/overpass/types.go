package overpass

// Response is the top-level Overpass JSON payload.
type Response struct {
	Elements []Element `json:"elements"`
}

// Element is a single OSM object in an Overpass response. Geometry queries
// interleave relations (with members) and ways (with point lists).
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags,omitempty"`
	Members  []Member          `json:"members,omitempty"`
	Geometry []Point           `json:"geometry,omitempty"`
}

// Member is a relation member reference. Role is "outer", "inner" or "";
// an empty role is treated as outer.
type Member struct {
	Type     string  `json:"type"`
	Ref      int64   `json:"ref"`
	Role     string  `json:"role"`
	Geometry []Point `json:"geometry,omitempty"`
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Boundary is one parsed administrative boundary ready for persistence.
type Boundary struct {
	RelationID int64
	Name       string
	AdminLevel int
	WikidataID *string
	Tags       map[string]string
	Geometry   string // EWKT, SRID 4326
}
