package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/overpass"
	"github.com/CommonsAtlas/CA-Backend/internal/importer/provider"
	"gorm.io/gorm"
)

// DBBatchSize is the number of rows per transaction.
const DBBatchSize = 1000

// RowError captures one failed upsert without failing its batch.
type RowError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// PersistStats aggregates a persister run.
type PersistStats struct {
	Inserted  int        `json:"inserted"`
	RowErrors []RowError `json:"row_errors,omitempty"`
}

const upsertRawSQL = `
	INSERT INTO boundaries.raw_relations
		(relation_id, country_code, admin_level, name, wikidata_id, geometry, tags, fetched_at)
	VALUES (?, ?, ?, ?, ?, ST_GeomFromEWKT(?), ?::jsonb, NOW())
	ON CONFLICT (relation_id, country_code) DO UPDATE SET
		admin_level = EXCLUDED.admin_level,
		name        = EXCLUDED.name,
		wikidata_id = EXCLUDED.wikidata_id,
		geometry    = EXCLUDED.geometry,
		tags        = EXCLUDED.tags,
		fetched_at  = NOW()
`

// UpsertRawRelations writes one level's parsed boundaries into the raw
// table in transactional batches. Per-row failures are captured and the
// batch continues; a failed commit rolls the batch back and moves on.
func UpsertRawRelations(ctx context.Context, db *gorm.DB, country string, boundaries []overpass.Boundary) PersistStats {
	return upsertBatches(ctx, db, len(boundaries), func(tx *gorm.DB, i int) (string, error) {
		b := boundaries[i]
		tags, err := json.Marshal(b.Tags)
		if err != nil {
			return b.Name, fmt.Errorf("marshal tags: %w", err)
		}
		err = tx.Exec(upsertRawSQL,
			b.RelationID, country, b.AdminLevel, b.Name, b.WikidataID, b.Geometry, string(tags),
		).Error
		return b.Name, err
	})
}

const upsertEnrichedSQL = `
	INSERT INTO boundaries.enriched_boundaries
		(wikidata_id, commons_category, admin_level, name, geom, created_at)
	VALUES (?, ?, ?, ?, ST_GeomFromEWKT(?), NOW())
	ON CONFLICT (wikidata_id) DO UPDATE SET
		commons_category = EXCLUDED.commons_category,
		admin_level      = EXCLUDED.admin_level,
		name             = EXCLUDED.name,
		geom             = EXCLUDED.geom
`

// UpsertEnriched writes enriched records keyed on wikidata_id.
func UpsertEnriched(ctx context.Context, db *gorm.DB, records []EnrichedBoundary) PersistStats {
	return upsertBatches(ctx, db, len(records), func(tx *gorm.DB, i int) (string, error) {
		r := records[i]
		err := tx.Exec(upsertEnrichedSQL,
			r.WikidataID, r.CommonsCategory, r.AdminLevel, r.Name, r.Geom,
		).Error
		return r.Name, err
	})
}

// upsertBatches runs the shared batch/transaction loop. upsertRow performs
// one upsert inside the current transaction and returns the record's name
// for error capture.
func upsertBatches(ctx context.Context, db *gorm.DB, total int, upsertRow func(tx *gorm.DB, i int) (string, error)) PersistStats {
	var stats PersistStats
	start := time.Now()

	for offset := 0; offset < total; offset += DBBatchSize {
		end := offset + DBBatchSize
		if end > total {
			end = total
		}

		tx := db.WithContext(ctx).Begin()
		if tx.Error != nil {
			provider.LogError("db", "begin batch", tx.Error)
			stats.RowErrors = append(stats.RowErrors, RowError{
				Name:  fmt.Sprintf("batch %d", offset/DBBatchSize+1),
				Error: tx.Error.Error(),
			})
			continue
		}

		inserted := 0
		for i := offset; i < end; i++ {
			// Savepoint per row: a failed statement must not poison the
			// rest of the batch's transaction.
			sp := fmt.Sprintf("sp_row_%d", i)
			tx.SavePoint(sp)
			name, err := upsertRow(tx, i)
			if err != nil {
				tx.RollbackTo(sp)
				stats.RowErrors = append(stats.RowErrors, RowError{Name: name, Error: err.Error()})
				continue
			}
			inserted++
		}

		if err := tx.Commit().Error; err != nil {
			tx.Rollback()
			provider.LogError("db", "commit batch", err)
			stats.RowErrors = append(stats.RowErrors, RowError{
				Name:  fmt.Sprintf("batch %d", offset/DBBatchSize+1),
				Error: err.Error(),
			})
			continue
		}
		stats.Inserted += inserted
	}

	provider.LogUpsert("db", stats.Inserted, time.Since(start))
	return stats
}
