// Package tenant provides schema-per-tenant database routing.
//
// Every tenant's tables live in a physically separate Postgres schema. A
// connection is scoped to exactly one tenant by switching its search_path,
// and reset to the baseline namespace before it returns to the shared pool.
// A connection handed back still scoped to tenant A would leak data into the
// next caller's unit of work, so the reset runs on every exit path.
package tenant

import (
	"context"
	"fmt"

	"github.com/packhouse/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// SchemaRouter scopes database connections to tenant schemas
type SchemaRouter struct {
	db         *gorm.DB
	baseSchema string
}

// NewSchemaRouter creates a router over the shared connection pool. baseSchema
// is the namespace connections are reset to between tenants, normally public.
func NewSchemaRouter(db *gorm.DB, baseSchema string) *SchemaRouter {
	if baseSchema == "" {
		baseSchema = "public"
	}
	return &SchemaRouter{db: db, baseSchema: baseSchema}
}

// BaseSchema returns the baseline namespace
func (r *SchemaRouter) BaseSchema() string {
	return r.baseSchema
}

// WithTenantScope pins one connection, switches its search_path to the
// tenant's schema, runs fn on it, and resets the search_path before the
// connection is released. The schema name passes through the allow-list
// validator even when internally sourced; it is the only identifier this
// package ever interpolates into SQL.
func (r *SchemaRouter) WithTenantScope(ctx context.Context, schemaName string, fn func(conn *gorm.DB) error) error {
	validated, err := identity.ValidateSchemaName(schemaName)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Connection(func(conn *gorm.DB) (err error) {
		if e := conn.Exec(fmt.Sprintf(`SET search_path TO %q`, validated)).Error; e != nil {
			return fmt.Errorf("switching to schema %s: %w", validated, e)
		}
		defer func() {
			// search_path switches are connection-local and must never
			// survive a pool checkout boundary.
			if e := conn.Exec(fmt.Sprintf(`SET search_path TO %q`, r.baseSchema)).Error; e != nil && err == nil {
				err = fmt.Errorf("resetting search_path: %w", e)
			}
		}()
		return fn(conn)
	})
}

// WithTenantTransaction is WithTenantScope with fn wrapped in a database
// transaction on the scoped connection.
func (r *SchemaRouter) WithTenantTransaction(ctx context.Context, schemaName string, fn func(tx *gorm.DB) error) error {
	return r.WithTenantScope(ctx, schemaName, func(conn *gorm.DB) error {
		return conn.Transaction(fn)
	})
}
