package geocode

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// ParsePoint validates lat/lon query parameters.
func ParsePoint(latStr, lonStr string) (float64, float64, bool) {
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lon, err2 := strconv.ParseFloat(lonStr, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// ParseLevels parses an optional comma-separated admin-level filter.
func ParseLevels(s string) ([]int, bool) {
	if s == "" {
		return nil, true
	}
	parts := strings.Split(s, ",")
	levels := make([]int, 0, len(parts))
	for _, part := range parts {
		level, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || level < 1 || level > 11 {
			return nil, false
		}
		levels = append(levels, level)
	}
	return levels, true
}

// ReverseHandler handles GET /geocode/reverse?lat=..&lon=..[&levels=4,6,8]
func ReverseHandler(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := ParsePoint(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if !ok {
		http.Error(w, "lat and lon are required: lat in [-90,90], lon in [-180,180]", http.StatusBadRequest)
		return
	}
	levels, ok := ParseLevels(r.URL.Query().Get("levels"))
	if !ok {
		http.Error(w, "levels must be comma-separated integers in [1,11]", http.StatusBadRequest)
		return
	}

	// Only uncustomised lookups hit the cache; level filters are rare.
	if len(levels) == 0 {
		if cached, hit := cache.Get(r.Context(), lat, lon); hit {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Data-Status", "cached")
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	matches, err := FindBoundariesByPoint(r.Context(), lat, lon, levels)
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []Match{}
	}

	resp := &ReverseResponse{Lat: lat, Lon: lon, Matches: matches}
	if len(matches) > 0 {
		// Matches are ordered coarse to fine; the last is the most specific.
		resp.Best = &matches[len(matches)-1]
	}

	if len(levels) == 0 {
		cache.Set(r.Context(), lat, lon, resp)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
