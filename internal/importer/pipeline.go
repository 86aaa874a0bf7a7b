package importer

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/overpass"
	"github.com/CommonsAtlas/CA-Backend/internal/importer/wikidata"
	"gorm.io/gorm"
)

// Pipeline wires the import stages together: discovery, geometry fetch,
// raw persistence, Commons enrichment, transform and enriched persistence.
type Pipeline struct {
	db       *gorm.DB
	overpass *overpass.Client
	wikidata *wikidata.Client
	tracker  *ProgressTracker
}

// NewPipeline builds a pipeline on the shared database handle.
func NewPipeline(cfg Config, db *gorm.DB) *Pipeline {
	return &Pipeline{
		db:       db,
		overpass: overpass.NewClient(cfg.OverpassURL, cfg.UserAgent),
		wikidata: wikidata.NewClient(cfg.WikidataAPIURL, cfg.UserAgent),
		tracker:  NewProgressTracker(db),
	}
}

// Tracker exposes the progress tracker for callers that report status.
func (p *Pipeline) Tracker() *ProgressTracker { return p.tracker }

// Report aggregates one country's import for the operator summary.
type Report struct {
	CountryCode  string         `json:"country_code"`
	Discovered   int            `json:"discovered"`
	Parsed       int            `json:"parsed"`
	CategoryHits int            `json:"category_hits"`
	Transform    TransformStats `json:"transform"`
	Persist      PersistStats   `json:"persist"`
	Verify       *VerifyReport  `json:"verify,omitempty"`
}

// ImportCountry runs the whole pipeline for one ISO3 country code. Errors
// from discovery or geometry fetch mark the country failed and return;
// wikidata, transform and persistence degrade gracefully instead.
func (p *Pipeline) ImportCountry(ctx context.Context, iso3 string, minLevel, maxLevel int) (*Report, error) {
	if !iso3Pattern.MatchString(iso3) {
		return nil, fmt.Errorf("invalid ISO3 code %q", iso3)
	}
	if minLevel < 2 || maxLevel > 11 || minLevel > maxLevel {
		return nil, fmt.Errorf("invalid admin level range %d-%d", minLevel, maxLevel)
	}

	if err := p.tracker.Start(ctx, iso3, minLevel); err != nil {
		return nil, err
	}

	report := &Report{CountryCode: iso3}

	// Discovery (C3).
	levels, err := p.overpass.DiscoverHierarchy(ctx, iso3, minLevel, maxLevel)
	if err != nil {
		p.tracker.Fail(ctx, iso3, err)
		return report, fmt.Errorf("discover %s: %w", iso3, err)
	}
	for _, ids := range levels {
		report.Discovered += len(ids)
	}

	// Geometry fetch and raw persistence, level by level, ascending. A
	// level's rows are committed before the next level's fetch begins.
	sortedLevels := make([]int, 0, len(levels))
	for level := range levels {
		sortedLevels = append(sortedLevels, level)
	}
	sort.Ints(sortedLevels)

	for _, level := range sortedLevels {
		boundaries, err := p.overpass.FetchBoundaries(ctx, levels[level])
		if err != nil {
			p.tracker.Fail(ctx, iso3, err)
			return report, fmt.Errorf("fetch level %d of %s: %w", level, iso3, err)
		}
		report.Parsed += len(boundaries)

		stats := UpsertRawRelations(ctx, p.db, iso3, boundaries)
		if n := len(stats.RowErrors); n > 0 {
			p.tracker.AddErrors(ctx, iso3, n)
		}
		if err := p.tracker.LevelCompleted(ctx, iso3, level, len(boundaries)); err != nil {
			return report, err
		}
		log.Printf("[importer] %s level %d: %d boundaries persisted", iso3, level, stats.Inserted)
	}

	// Enrichment (C5): rows are read back ordered so the transform's
	// first-wins dedup keeps the coarsest boundary.
	var rows []RawRelation
	err = p.db.WithContext(ctx).Model(&RawRelation{}).
		Select("id, relation_id, country_code, admin_level, name, wikidata_id, ST_AsEWKT(geometry) AS geometry, tags, fetched_at").
		Where("country_code = ? AND wikidata_id IS NOT NULL", iso3).
		Order("admin_level ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		p.tracker.Fail(ctx, iso3, err)
		return report, fmt.Errorf("load raw relations for %s: %w", iso3, err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, *row.WikidataID)
	}
	categories := p.wikidata.FetchCommonsCategories(ctx, ids)
	report.CategoryHits = len(categories)

	// Transform (C6) and enriched persistence (C7).
	records, tstats := TransformRelations(rows, categories)
	report.Transform = tstats

	pstats := UpsertEnriched(ctx, p.db, records)
	report.Persist = pstats
	if n := len(pstats.RowErrors); n > 0 {
		p.tracker.AddErrors(ctx, iso3, n)
	}

	// Verification and terminal state.
	verify, err := VerifyCountry(ctx, p.db, iso3, rangeLevels(minLevel, maxLevel))
	if err != nil {
		log.Printf("[importer] %s: verify failed: %v", iso3, err)
	} else {
		report.Verify = verify
		verify.Print()
	}
	report.Print()

	if err := p.tracker.Complete(ctx, iso3); err != nil {
		return report, err
	}
	return report, nil
}

func rangeLevels(min, max int) []int {
	levels := make([]int, 0, max-min+1)
	for l := min; l <= max; l++ {
		levels = append(levels, l)
	}
	return levels
}

// Print logs the operator-facing summary, including the first ten per-row
// persistence errors.
func (r *Report) Print() {
	log.Printf("[importer] %s summary: discovered=%d parsed=%d category_hits=%d accepted=%d inserted=%d",
		r.CountryCode, r.Discovered, r.Parsed, r.CategoryHits, r.Transform.Accepted, r.Persist.Inserted)
	log.Printf("[importer] %s drops: missing_wikidata=%d missing_category=%d invalid_geometry=%d duplicates=%d",
		r.CountryCode, r.Transform.MissingWikidata, r.Transform.MissingCategory,
		r.Transform.InvalidGeometry, r.Transform.Duplicates)
	for i, rowErr := range r.Persist.RowErrors {
		if i == 10 {
			log.Printf("[importer] %s: ... %d more row errors", r.CountryCode, len(r.Persist.RowErrors)-10)
			break
		}
		log.Printf("[importer] %s row error: %s: %s", r.CountryCode, rowErr.Name, rowErr.Error)
	}
}
