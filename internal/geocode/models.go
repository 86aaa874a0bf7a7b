package geocode

// Match is one boundary containing the queried point.
type Match struct {
	WikidataID      string `json:"wikidata_id"`
	CommonsCategory string `json:"commons_category"`
	AdminLevel      int    `json:"admin_level"`
	Name            string `json:"name"`
}

// ReverseResponse is the reverse-geocode payload. Best is the most specific
// (highest admin level) match.
type ReverseResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Best    *Match  `json:"best,omitempty"`
	Matches []Match `json:"matches"`
}
