package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
)

// ErrTenantContextMissing is returned when an operation requires a tenant scope
// and none is present. There is no implicit default tenant.
var ErrTenantContextMissing = shared.NewDomainError("TENANT_CONTEXT_MISSING", "No tenant context is active for this operation")

// TenantContext identifies which tenant's data is in scope for a unit of work.
// It is an immutable value passed explicitly through every call that needs it,
// never implicit mutable state.
type TenantContext struct {
	TenantID   uuid.UUID
	SchemaName string
}

// Validate returns an error when the context does not identify a tenant or
// carries a schema name outside the allow-list.
func (tc TenantContext) Validate() error {
	if tc.TenantID == uuid.Nil {
		return ErrTenantContextMissing
	}
	if _, err := ValidateSchemaName(tc.SchemaName); err != nil {
		return err
	}
	return nil
}

type tenantContextKey struct{}

// WithTenantContext returns a context carrying the tenant scope, for
// collaborators that cannot re-thread the value through every call.
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// TenantFromContext reads the ambient tenant scope for the current unit of
// work. It fails with ErrTenantContextMissing rather than defaulting.
func TenantFromContext(ctx context.Context) (TenantContext, error) {
	tc, ok := ctx.Value(tenantContextKey{}).(TenantContext)
	if !ok {
		return TenantContext{}, ErrTenantContextMissing
	}
	return tc, nil
}
