package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/packhouse/backend/internal/domain/identity"
	"github.com/packhouse/backend/internal/domain/shared"
	"github.com/packhouse/backend/internal/infrastructure/logger"
	"github.com/packhouse/backend/internal/interfaces/http/dto"
)

// TenantHeader is the header carrying the tenant ID
const TenantHeader = "X-Tenant-ID"

// tenantContextKey is the gin context key for the resolved tenant context
const tenantContextKey = "tenant_context"

// TenantResolver resolves the X-Tenant-ID header against the tenant registry
// and attaches the resulting TenantContext to the request. There is no default
// tenant: requests without the header are rejected.
func TenantResolver(tenants identity.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(TenantHeader)
		if header == "" {
			abortWithError(c, http.StatusBadRequest, identity.ErrTenantContextMissing.Code,
				"Missing "+TenantHeader+" header")
			return
		}

		tenantID, err := uuid.Parse(header)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Invalid tenant ID format")
			return
		}

		tenant, err := tenants.FindByID(c.Request.Context(), tenantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortWithError(c, http.StatusNotFound, shared.ErrNotFound.Code, "Tenant not found")
				return
			}
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to resolve tenant")
			return
		}
		if !tenant.Status.IsActive() {
			abortWithError(c, http.StatusForbidden, identity.ErrTenantNotActive.Code, identity.ErrTenantNotActive.Message)
			return
		}

		tc := tenant.Context()
		if err := tc.Validate(); err != nil {
			// A registry row carrying a bad schema name must never reach the router
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Tenant registry entry is invalid")
			return
		}

		c.Set(tenantContextKey, tc)
		ctx := identity.WithTenantContext(c.Request.Context(), tc)
		ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tc.TenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenantContext returns the tenant context resolved for this request
func GetTenantContext(c *gin.Context) (identity.TenantContext, error) {
	v, ok := c.Get(tenantContextKey)
	if !ok {
		return identity.TenantContext{}, identity.ErrTenantContextMissing
	}
	tc, ok := v.(identity.TenantContext)
	if !ok {
		return identity.TenantContext{}, identity.ErrTenantContextMissing
	}
	return tc, nil
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
