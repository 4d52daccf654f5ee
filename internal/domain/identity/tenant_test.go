package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchemaName(t *testing.T) {
	t.Run("accepts valid schema names", func(t *testing.T) {
		valid := []string{
			"tenant_a1b2c3d4e5f6",
			"tenant_00000000",
			"tenant_abcdefgh",
			"tenant_" + strings.Repeat("a", 32),
		}
		for _, name := range valid {
			got, err := ValidateSchemaName(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, got)
		}
	})

	t.Run("rejects injection attempts", func(t *testing.T) {
		_, err := ValidateSchemaName("tenant_abc; DROP TABLE x")
		assert.ErrorIs(t, err, ErrInvalidSchemaName)
	})

	t.Run("rejects uppercase", func(t *testing.T) {
		_, err := ValidateSchemaName("tenant_A1B2C3D4")
		assert.ErrorIs(t, err, ErrInvalidSchemaName)
	})

	t.Run("rejects too short and too long suffixes", func(t *testing.T) {
		_, err := ValidateSchemaName("tenant_abc")
		assert.ErrorIs(t, err, ErrInvalidSchemaName)

		_, err = ValidateSchemaName("tenant_" + strings.Repeat("a", 33))
		assert.ErrorIs(t, err, ErrInvalidSchemaName)
	})

	t.Run("rejects missing prefix and special characters", func(t *testing.T) {
		invalid := []string{
			"",
			"public",
			"client_a1b2c3d4",
			"tenant_a1b2c3d4 ",
			" tenant_a1b2c3d4",
			`tenant_"a1b2c3d4"`,
			"tenant_a1b2-c3d4",
		}
		for _, name := range invalid {
			_, err := ValidateSchemaName(name)
			assert.ErrorIs(t, err, ErrInvalidSchemaName, name)
		}
	})
}

func TestTenantContextValidate(t *testing.T) {
	t.Run("valid context passes", func(t *testing.T) {
		tc := TenantContext{TenantID: uuid.New(), SchemaName: "tenant_a1b2c3d4e5f6"}
		assert.NoError(t, tc.Validate())
	})

	t.Run("nil tenant id fails", func(t *testing.T) {
		tc := TenantContext{SchemaName: "tenant_a1b2c3d4e5f6"}
		assert.ErrorIs(t, tc.Validate(), ErrTenantContextMissing)
	})

	t.Run("invalid schema name fails", func(t *testing.T) {
		tc := TenantContext{TenantID: uuid.New(), SchemaName: "tenant_abc; DROP TABLE x"}
		assert.ErrorIs(t, tc.Validate(), ErrInvalidSchemaName)
	})
}

func TestTenantFromContext(t *testing.T) {
	t.Run("round trips through a context", func(t *testing.T) {
		tc := TenantContext{TenantID: uuid.New(), SchemaName: "tenant_a1b2c3d4e5f6"}
		ctx := WithTenantContext(context.Background(), tc)

		got, err := TenantFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc, got)
	})

	t.Run("fails without ambient tenant instead of defaulting", func(t *testing.T) {
		_, err := TenantFromContext(context.Background())
		assert.ErrorIs(t, err, ErrTenantContextMissing)
	})
}

func TestTenantStatus(t *testing.T) {
	assert.True(t, TenantStatusActive.IsActive())
	assert.False(t, TenantStatusSuspended.IsActive())
	assert.False(t, TenantStatusInactive.IsActive())
}

func TestTenantContextAccessor(t *testing.T) {
	tenant := &Tenant{Name: "Riverside Packhouse", SchemaName: "tenant_riverside01"}
	tenant.ID = uuid.New()

	tc := tenant.Context()
	assert.Equal(t, tenant.ID, tc.TenantID)
	assert.Equal(t, "tenant_riverside01", tc.SchemaName)
}
