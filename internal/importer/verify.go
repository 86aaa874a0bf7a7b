package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// VerifyReport summarises a country's data after import.
type VerifyReport struct {
	CountryCode       string      `json:"country_code"`
	LevelCounts       map[int]int `json:"level_counts"`
	RawRelations      int         `json:"raw_relations"`
	EnrichedRows      int         `json:"enriched_rows"`
	NullFieldRows     int         `json:"null_field_rows"`
	InvalidGeometries int         `json:"invalid_geometries"`
}

// VerifyCountry cross-checks the raw and enriched tables for one country:
// per-level counts, rows with null required fields, and geometries the
// storage engine considers invalid.
func VerifyCountry(ctx context.Context, db *gorm.DB, country string, levels []int) (*VerifyReport, error) {
	report := &VerifyReport{CountryCode: country, LevelCounts: make(map[int]int)}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT admin_level, COUNT(*)
		FROM boundaries.raw_relations
		WHERE country_code = ? AND admin_level = ANY(?)
		GROUP BY admin_level
		ORDER BY admin_level
	`, country, pq.Array(levels)).Rows()
	if err != nil {
		return nil, fmt.Errorf("level counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level, count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		report.LevelCounts[level] = count
		report.RawRelations += count
	}

	err = db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM boundaries.enriched_boundaries e
		JOIN boundaries.raw_relations r ON r.wikidata_id = e.wikidata_id
		WHERE r.country_code = ?
	`, country).Scan(&report.EnrichedRows).Error
	if err != nil {
		return nil, fmt.Errorf("enriched count: %w", err)
	}

	err = db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM boundaries.enriched_boundaries e
		JOIN boundaries.raw_relations r ON r.wikidata_id = e.wikidata_id
		WHERE r.country_code = ?
		  AND (e.wikidata_id IS NULL OR e.commons_category IS NULL
		       OR e.name IS NULL OR e.geom IS NULL)
	`, country).Scan(&report.NullFieldRows).Error
	if err != nil {
		return nil, fmt.Errorf("null-field count: %w", err)
	}

	err = db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM boundaries.enriched_boundaries e
		JOIN boundaries.raw_relations r ON r.wikidata_id = e.wikidata_id
		WHERE r.country_code = ? AND NOT ST_IsValid(e.geom)
	`, country).Scan(&report.InvalidGeometries).Error
	if err != nil {
		return nil, fmt.Errorf("invalid-geometry count: %w", err)
	}

	return report, nil
}

// Print logs the report in the operator-facing summary format.
func (r *VerifyReport) Print() {
	log.Printf("[verify] %s: %d raw relations, %d enriched rows", r.CountryCode, r.RawRelations, r.EnrichedRows)
	for level := 2; level <= 11; level++ {
		if count, ok := r.LevelCounts[level]; ok {
			log.Printf("[verify] %s: level %d -> %d relations", r.CountryCode, level, count)
		}
	}
	if r.NullFieldRows > 0 {
		log.Printf("[verify] %s: WARNING %d enriched rows with null fields", r.CountryCode, r.NullFieldRows)
	}
	if r.InvalidGeometries > 0 {
		log.Printf("[verify] %s: WARNING %d invalid geometries", r.CountryCode, r.InvalidGeometries)
	}
}
