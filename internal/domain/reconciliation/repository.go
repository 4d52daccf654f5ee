package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
)

// AlertFilter narrows alert queries. Nil fields match everything; soft-deleted
// alerts are excluded unconditionally.
type AlertFilter struct {
	Type     *AlertType
	Severity *Severity
	Status   *AlertStatus
	RunID    *uuid.UUID
	shared.Filter
}

// AlertRepository persists alerts within one tenant's namespace. All methods
// operate on a connection already scoped to the tenant's schema.
type AlertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	FindAll(ctx context.Context, filter AlertFilter) ([]Alert, error)
	Count(ctx context.Context, filter AlertFilter) (int64, error)

	// CreateBatch inserts a run's candidates in one statement
	CreateBatch(ctx context.Context, alerts []*Alert) error

	// Save persists status/resolution changes of an existing alert
	Save(ctx context.Context, alert *Alert) error

	// ResolveStaleOpen transitions every open alert whose run_id is not
	// currentRunID to resolved with a system note, returning how many rows
	// changed. Executed at the start of every run, before new candidates.
	ResolveStaleOpen(ctx context.Context, currentRunID uuid.UUID, at time.Time, note string) (int64, error)

	// SoftDelete marks an alert deleted without removing it, for audit
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
