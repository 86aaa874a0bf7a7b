package geocode

import (
	"context"
	"fmt"

	"github.com/CommonsAtlas/CA-Backend/internal/db"
	"github.com/lib/pq"
)

// FindBoundariesByPoint returns every enriched boundary containing the
// point, coarsest first. levels optionally restricts admin levels.
func FindBoundariesByPoint(ctx context.Context, lat, lon float64, levels []int) ([]Match, error) {
	query := `
		SELECT wikidata_id, commons_category, admin_level, name
		FROM boundaries.enriched_boundaries
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint(?, ?), 4326))
	`
	args := []interface{}{lon, lat}
	if len(levels) > 0 {
		query += " AND admin_level = ANY(?)"
		args = append(args, pq.Array(levels))
	}
	query += " ORDER BY admin_level ASC, name ASC"

	rows, err := db.DB.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("reverse geocode query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.WikidataID, &m.CommonsCategory, &m.AdminLevel, &m.Name); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}
