package persistence

import (
	"context"

	apprecon "github.com/packhouse/backend/internal/application/reconciliation"
	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/packhouse/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// gormWorkspace bundles the repositories built over one scoped connection
type gormWorkspace struct {
	alerts reconciliation.AlertRepository
	reader reconciliation.Reader
}

func newGormWorkspace(conn *gorm.DB) *gormWorkspace {
	return &gormWorkspace{
		alerts: NewGormAlertRepository(conn),
		reader: NewGormReconciliationReader(conn),
	}
}

// Alerts returns the alert repository bound to the scoped connection
func (w *gormWorkspace) Alerts() reconciliation.AlertRepository { return w.alerts }

// Reader returns the aggregate reader bound to the scoped connection
func (w *gormWorkspace) Reader() reconciliation.Reader { return w.reader }

// TenantWorkspaceRunner hands application services a workspace scoped to one
// tenant's schema. Repositories built here must not outlive fn; the underlying
// connection is reset and released when fn returns.
type TenantWorkspaceRunner struct {
	router *tenant.SchemaRouter
}

// NewTenantWorkspaceRunner creates a runner over the given schema router
func NewTenantWorkspaceRunner(router *tenant.SchemaRouter) *TenantWorkspaceRunner {
	return &TenantWorkspaceRunner{router: router}
}

// View runs fn on a connection scoped to the tenant's schema
func (r *TenantWorkspaceRunner) View(ctx context.Context, tc identity.TenantContext, fn func(ctx context.Context, ws apprecon.Workspace) error) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	scoped := identity.WithTenantContext(ctx, tc)
	return r.router.WithTenantScope(scoped, tc.SchemaName, func(conn *gorm.DB) error {
		return fn(scoped, newGormWorkspace(conn))
	})
}

// RunInTransaction runs fn inside a transaction on a connection scoped to the
// tenant's schema. fn's writes commit or roll back as one unit.
func (r *TenantWorkspaceRunner) RunInTransaction(ctx context.Context, tc identity.TenantContext, fn func(ctx context.Context, ws apprecon.Workspace) error) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	scoped := identity.WithTenantContext(ctx, tc)
	return r.router.WithTenantTransaction(scoped, tc.SchemaName, func(tx *gorm.DB) error {
		return fn(scoped, newGormWorkspace(tx))
	})
}

// Ensure TenantWorkspaceRunner implements WorkspaceRunner
var _ apprecon.WorkspaceRunner = (*TenantWorkspaceRunner)(nil)
