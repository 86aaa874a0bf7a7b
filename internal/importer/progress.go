package importer

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressTracker persists the per-country import state machine.
type ProgressTracker struct {
	db *gorm.DB
}

func NewProgressTracker(db *gorm.DB) *ProgressTracker {
	return &ProgressTracker{db: db}
}

// Start moves a country to in_progress, resetting counters and timestamps.
// A prior aborted run is re-initialised; resumption re-does the work.
func (t *ProgressTracker) Start(ctx context.Context, country string, minLevel int) error {
	row := ImportProgress{
		CountryCode:       country,
		CurrentAdminLevel: minLevel,
		Status:            StatusInProgress,
		StartedAt:         time.Now().UTC(),
	}
	err := t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "country_code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_admin_level": row.CurrentAdminLevel,
			"status":              StatusInProgress,
			"relations_fetched":   0,
			"errors":              0,
			"started_at":          row.StartedAt,
			"completed_at":        nil,
			"last_error":          nil,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("start progress for %s: %w", country, err)
	}
	return nil
}

// LevelCompleted records a finished admin level and its relation count.
func (t *ProgressTracker) LevelCompleted(ctx context.Context, country string, level, fetched int) error {
	err := t.db.WithContext(ctx).Model(&ImportProgress{}).
		Where("country_code = ?", country).
		Updates(map[string]interface{}{
			"current_admin_level": level,
			"relations_fetched":   gorm.Expr("relations_fetched + ?", fetched),
		}).Error
	if err != nil {
		return fmt.Errorf("record level %d for %s: %w", level, country, err)
	}
	return nil
}

// AddErrors bumps the cumulative error counter.
func (t *ProgressTracker) AddErrors(ctx context.Context, country string, n int) error {
	if n == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Model(&ImportProgress{}).
		Where("country_code = ?", country).
		Update("errors", gorm.Expr("errors + ?", n)).Error
}

// Complete marks the country done.
func (t *ProgressTracker) Complete(ctx context.Context, country string) error {
	now := time.Now().UTC()
	err := t.db.WithContext(ctx).Model(&ImportProgress{}).
		Where("country_code = ?", country).
		Updates(map[string]interface{}{
			"status":       StatusCompleted,
			"completed_at": now,
			"last_error":   nil,
		}).Error
	if err != nil {
		return fmt.Errorf("complete progress for %s: %w", country, err)
	}
	return nil
}

// Fail marks the country failed with a one-line reason.
func (t *ProgressTracker) Fail(ctx context.Context, country string, cause error) error {
	reason := cause.Error()
	err := t.db.WithContext(ctx).Model(&ImportProgress{}).
		Where("country_code = ?", country).
		Updates(map[string]interface{}{
			"status":     StatusFailed,
			"last_error": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("fail progress for %s: %w", country, err)
	}
	return nil
}

// Get returns the progress row for one country.
func (t *ProgressTracker) Get(ctx context.Context, country string) (*ImportProgress, error) {
	var row ImportProgress
	if err := t.db.WithContext(ctx).First(&row, "country_code = ?", country).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// All returns every progress row.
func (t *ProgressTracker) All(ctx context.Context) ([]ImportProgress, error) {
	var rows []ImportProgress
	if err := t.db.WithContext(ctx).Order("country_code").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Pending filters the catalogue down to countries not yet completed.
func (t *ProgressTracker) Pending(ctx context.Context, catalogue []string) ([]string, error) {
	var completed []string
	err := t.db.WithContext(ctx).Model(&ImportProgress{}).
		Where("status = ?", StatusCompleted).
		Pluck("country_code", &completed).Error
	if err != nil {
		return nil, fmt.Errorf("list completed countries: %w", err)
	}

	done := make(map[string]struct{}, len(completed))
	for _, code := range completed {
		done[code] = struct{}{}
	}

	var pending []string
	for _, code := range catalogue {
		if _, ok := done[code]; !ok {
			pending = append(pending, code)
		}
	}
	return pending, nil
}
