package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/infrastructure/auth"
	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier() *auth.Verifier {
	return auth.NewVerifier(config.JWTConfig{
		Enabled: true,
		Secret:  "test-secret-key-at-least-32-chars",
		Issuer:  "rst-test",
	})
}

func signToken(t *testing.T, v *auth.Verifier, tenantID uuid.UUID, expiresIn time.Duration) string {
	t.Helper()
	token, err := v.Sign(&auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		TenantID: tenantID.String(),
		Username: "maria",
	})
	require.NoError(t, err)
	return token
}

func TestJWTAuth(t *testing.T) {
	verifier := newTestVerifier()
	tenantID := uuid.New()

	router := gin.New()
	router.Use(RequestID(), JWTAuth(DefaultJWTConfig(verifier)))
	router.GET("/health", okHandler)
	router.GET("/api/v1/costs", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		c.String(http.StatusOK, claims.TenantID+"|"+GetOperator(c))
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/costs", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+signToken(t, verifier, tenantID, time.Hour))
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID.String()+"|maria", w.Body.String())
	})

	t.Run("skip path needs no token", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "ERR_UNAUTHORIZED"},
		{"not bearer", "Basic abc", "ERR_UNAUTHORIZED"},
		{"empty bearer", "Bearer  ", "ERR_UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-jwt", "ERR_TOKEN_INVALID"},
		{"expired token", BearerPrefix + signToken(t, verifier, tenantID, -time.Hour), "ERR_TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/costs", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := serve(router, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestGetJWTClaims_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetOperator(c))
}
