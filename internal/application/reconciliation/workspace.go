// Package reconciliation wires the reconciliation domain into application
// services: the run orchestrator invoked by the scheduler or a manual trigger,
// and the alert service consumed by the admin/reporting layer.
package reconciliation

import (
	"context"

	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/reconciliation"
)

// Workspace is one tenant's namespace as seen by the services: the alert
// store and the read-only operational data the checks aggregate over.
type Workspace interface {
	Alerts() reconciliation.AlertRepository
	Reader() reconciliation.Reader
}

// WorkspaceRunner scopes a database connection to one tenant's schema for the
// duration of fn, resetting the connection to the baseline namespace on every
// exit path. RunInTransaction additionally wraps fn in a transaction so a
// run's writes are atomic.
type WorkspaceRunner interface {
	View(ctx context.Context, tc identity.TenantContext, fn func(ctx context.Context, ws Workspace) error) error
	RunInTransaction(ctx context.Context, tc identity.TenantContext, fn func(ctx context.Context, ws Workspace) error) error
}

// RunLock is a held per-tenant run lock
type RunLock interface {
	Release(ctx context.Context) error
}

// RunLocker serializes reconciliation runs per tenant. Acquire returns
// reconciliation.ErrRunInProgress when another run already holds the lock for
// the same key.
type RunLocker interface {
	Acquire(ctx context.Context, key string) (RunLock, error)
}
