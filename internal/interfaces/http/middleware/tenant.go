package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// DefaultTenantID is the single farm used when neither a token nor the
// X-Tenant-ID header names one
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// HeaderEnabled allows X-Tenant-ID; disable it when tokens carry the tenant
	HeaderEnabled bool
	// Fallback is used when no tenant is found; uuid.Nil makes the tenant mandatory
	Fallback  uuid.UUID
	SkipPaths []string
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		Fallback:      DefaultTenantID,
		SkipPaths:     []string{"/health"},
	}
}

// Tenant resolves the tenant of the request.
// Extraction order: JWT claims > X-Tenant-ID header > fallback.
func Tenant(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		raw := c.GetString(JWTTenantIDKey)
		if raw == "" && cfg.HeaderEnabled {
			raw = c.GetHeader(TenantHeaderKey)
		}

		tenantID := cfg.Fallback
		if raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				abort(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Tenant identification required")
			return
		}

		c.Set(TenantIDKey, tenantID)
		ctx := c.Request.Context()
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("tenant_id", tenantID.String())))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenantUUID retrieves the tenant resolved by Tenant
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
