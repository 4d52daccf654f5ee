package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/packhouse/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Columns alert listings may be ordered by
var alertSortColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"severity":     true,
	"alert_type":   true,
	"status":       true,
	"variance_pct": true,
}

// GormAlertRepository implements AlertRepository using GORM. It carries no
// tenant awareness of its own; the connection it is built on is already
// scoped to one tenant's schema.
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Alert, error) {
	var alert reconciliation.Alert
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindAll finds all alerts matching the filter
func (r *GormAlertRepository) FindAll(ctx context.Context, filter reconciliation.AlertFilter) ([]reconciliation.Alert, error) {
	var alerts []reconciliation.Alert
	query := r.applyFilter(r.db.WithContext(ctx).Model(&reconciliation.Alert{}), filter)
	query = query.Offset(filter.Offset()).Limit(filter.Limit())
	query = query.Order(r.orderClause(filter.Filter))

	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Count counts alerts matching the filter
func (r *GormAlertRepository) Count(ctx context.Context, filter reconciliation.AlertFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&reconciliation.Alert{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch inserts a run's alert candidates in one statement
func (r *GormAlertRepository) CreateBatch(ctx context.Context, alerts []*reconciliation.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(alerts).Error
}

// Save persists changes to an existing alert
func (r *GormAlertRepository) Save(ctx context.Context, alert *reconciliation.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// ResolveStaleOpen auto-resolves open alerts left over from earlier runs.
// An open alert whose mismatch is still present would have been reproduced
// under currentRunID, so anything open with a different run_id is stale.
func (r *GormAlertRepository) ResolveStaleOpen(ctx context.Context, currentRunID uuid.UUID, at time.Time, note string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&reconciliation.Alert{}).
		Where("status = ? AND run_id <> ? AND is_deleted = ?", reconciliation.AlertStatusOpen, currentRunID, false).
		Updates(map[string]interface{}{
			"status":          reconciliation.AlertStatusResolved,
			"resolved_at":     at,
			"resolved_by":     reconciliation.SystemActor,
			"resolution_note": note,
			"updated_at":      at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SoftDelete marks an alert deleted without removing the row
func (r *GormAlertRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&reconciliation.Alert{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter criteria without pagination or ordering
func (r *GormAlertRepository) applyFilter(query *gorm.DB, filter reconciliation.AlertFilter) *gorm.DB {
	query = query.Where("is_deleted = ?", false)
	if filter.Type != nil {
		query = query.Where("alert_type = ?", *filter.Type)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RunID != nil {
		query = query.Where("run_id = ?", *filter.RunID)
	}
	return query
}

func (r *GormAlertRepository) orderClause(filter shared.Filter) string {
	column := "created_at"
	if alertSortColumns[filter.OrderBy] {
		column = filter.OrderBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Ensure GormAlertRepository implements AlertRepository
var _ reconciliation.AlertRepository = (*GormAlertRepository)(nil)
