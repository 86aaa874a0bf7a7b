package importer

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TagMap stores the verbatim OSM tag map as jsonb.
type TagMap map[string]string

func (t TagMap) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TagMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	case nil:
		*t = nil
		return nil
	}
	return fmt.Errorf("unsupported tags type %T", value)
}

// RawRelation is one discovered OSM relation for a country. Geometry holds
// EWKT text on the Go side; the column is a PostGIS geometry.
type RawRelation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RelationID  int64     `json:"relation_id" gorm:"index:uniq_relation_country,unique"`
	CountryCode string    `json:"country_code" gorm:"size:3;index:uniq_relation_country,unique;index:idx_raw_country_level"`
	AdminLevel  int       `json:"admin_level" gorm:"index:idx_raw_country_level"`
	Name        string    `json:"name"`
	WikidataID  *string   `json:"wikidata_id" gorm:"index"`
	Geometry    *string   `json:"-"`
	Tags        TagMap    `json:"tags" gorm:"type:jsonb"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// EnrichedBoundary is the consumer-facing projection keyed by wikidata id.
type EnrichedBoundary struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	WikidataID      string    `json:"wikidata_id" gorm:"uniqueIndex"`
	CommonsCategory string    `json:"commons_category"`
	AdminLevel      int       `json:"admin_level" gorm:"index"`
	Name            string    `json:"name"`
	Geom            string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// Import progress states.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ImportProgress is the per-country resumable state machine row.
type ImportProgress struct {
	CountryCode       string     `json:"country_code" gorm:"primaryKey;size:3"`
	CurrentAdminLevel int        `json:"current_admin_level"`
	Status            string     `json:"status" gorm:"index"`
	RelationsFetched  int        `json:"relations_fetched"`
	Errors            int        `json:"errors"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	LastError         *string    `json:"last_error,omitempty"`
}

func (RawRelation) TableName() string {
	return "boundaries.raw_relations"
}

func (EnrichedBoundary) TableName() string {
	return "boundaries.enriched_boundaries"
}

func (ImportProgress) TableName() string {
	return "boundaries.import_progress"
}
