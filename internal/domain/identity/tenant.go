package identity

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusInactive  TenantStatus = "inactive"
)

// IsActive returns true if the tenant may be served
func (s TenantStatus) IsActive() bool {
	return s == TenantStatusActive
}

// SchemaNamePrefix is the mandatory prefix of every tenant schema name
const SchemaNamePrefix = "tenant_"

// schemaNamePattern is the allow-list for tenant schema identifiers. The schema
// name is interpolated into search_path statements, so anything outside this
// pattern must never reach the database layer.
var schemaNamePattern = regexp.MustCompile(`^tenant_[a-z0-9]{8,32}$`)

// ErrInvalidSchemaName is returned when a schema identifier fails the allow-list
var ErrInvalidSchemaName = shared.NewDomainError("INVALID_SCHEMA_NAME", "Schema identifier is not a valid tenant schema name")

// ErrTenantNotActive is returned when a suspended or inactive tenant is addressed
var ErrTenantNotActive = shared.NewDomainError("TENANT_NOT_ACTIVE", "Tenant is not active")

// ValidateSchemaName checks a schema identifier against the allow-list pattern
// and returns it unchanged when valid. Every identifier, including internally
// generated ones, must pass through here before being used in SQL.
func ValidateSchemaName(name string) (string, error) {
	if !schemaNamePattern.MatchString(name) {
		return "", ErrInvalidSchemaName
	}
	return name, nil
}

// Tenant describes one customer organization of the platform. The record is
// owned by the tenant registry; the reconciliation core only reads it.
type Tenant struct {
	shared.BaseEntity
	Name       string       `gorm:"type:varchar(200);not null"`
	SchemaName string       `gorm:"type:varchar(63);not null;uniqueIndex"`
	Status     TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// Context returns the tenant context for this tenant
func (t *Tenant) Context() TenantContext {
	return TenantContext{TenantID: t.ID, SchemaName: t.SchemaName}
}

// TenantRepository is the read-only view of the tenant registry consumed by
// the reconciliation core.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindActive(ctx context.Context) ([]Tenant, error)
}
