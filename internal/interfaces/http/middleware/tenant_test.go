package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func tenantRouter(cfg TenantMiddlewareConfig, pre ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(pre...)
	router.Use(Tenant(cfg))
	handler := func(c *gin.Context) {
		id, ok := GetTenantUUID(c)
		if !ok {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, id.String())
	}
	router.GET("/health", handler)
	router.GET("/api/v1/sales", handler)
	return router
}

func TestTenant(t *testing.T) {
	headerTenant := uuid.New()

	t.Run("fallback tenant", func(t *testing.T) {
		w := serve(tenantRouter(DefaultTenantConfig()), httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, DefaultTenantID.String(), w.Body.String())
	})

	t.Run("header tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(TenantHeaderKey, headerTenant.String())
		w := serve(tenantRouter(DefaultTenantConfig()), req)
		assert.Equal(t, headerTenant.String(), w.Body.String())
	})

	t.Run("invalid header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(TenantHeaderKey, "farm-1")
		w := serve(tenantRouter(DefaultTenantConfig()), req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_BAD_REQUEST", decodeError(t, w).Error.Code)
	})

	t.Run("token tenant wins over header", func(t *testing.T) {
		verifier := newTestVerifier()
		tokenTenant := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+signToken(t, verifier, tokenTenant, time.Hour))
		req.Header.Set(TenantHeaderKey, headerTenant.String())

		w := serve(tenantRouter(DefaultTenantConfig(), JWTAuth(DefaultJWTConfig(verifier))), req)
		assert.Equal(t, tokenTenant.String(), w.Body.String())
	})

	t.Run("header ignored when disabled", func(t *testing.T) {
		cfg := TenantMiddlewareConfig{HeaderEnabled: false}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(TenantHeaderKey, headerTenant.String())
		w := serve(tenantRouter(cfg), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip path", func(t *testing.T) {
		w := serve(tenantRouter(DefaultTenantConfig()), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, "none", w.Body.String())
	})
}
