package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "storefront-test",
	})
}

func newTestTokenPair(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, uuid.UUID) {
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Email:  "ana@example.com",
		Role:   role.String(),
		Name:   "Ana Pérez",
	})
	require.NoError(t, err)
	return pair, userID
}

func serveWithToken(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := newTestTokenPair(t, svc, identity.RoleCustomer)

	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(logger.GinMiddleware(zap.New(core)))
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/cart", func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, identity.RoleCustomer, actor.Role)
		assert.Equal(t, userID.String(), GetJWTUserID(c))
		assert.Equal(t, "ana@example.com", GetJWTClaims(c).Email)
		assert.Equal(t, userID.String(), logger.GetUserID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := serveWithToken(router, "/cart", pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, userID.String(), logs.All()[0].ContextMap()["user_id"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := newTestTokenPair(t, svc, identity.RoleCustomer)
	expiredSvc := newTestJWTService(-time.Minute)
	expired, _ := newTestTokenPair(t, expiredSvc, identity.RoleCustomer)
	unknownRole, _ := newTestTokenPair(t, svc, identity.Role("superuser"))

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", dto.ErrCodeTokenMissing},
		{"garbage", "not-a-jwt", dto.ErrCodeTokenInvalid},
		{"refresh token used as access", pair.RefreshToken, dto.ErrCodeTokenInvalid},
		{"expired", expired.AccessToken, dto.ErrCodeTokenExpired},
		{"unknown role", unknownRole.AccessToken, dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithToken(router, "/cart", tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService(time.Minute)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serveWithToken(router, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serveWithToken(router, "/swagger/index.html", "").Code)
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	adminPair, _ := newTestTokenPair(t, svc, identity.RoleAdministrator)
	customerPair, _ := newTestTokenPair(t, svc, identity.RoleCustomer)

	router := gin.New()
	router.GET("/admin/sales", JWTAuthMiddleware(svc), RequireRole(identity.RoleAdministrator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/unauthenticated", RequireRole(identity.RoleAdministrator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serveWithToken(router, "/admin/sales", adminPair.AccessToken).Code)

	w := serveWithToken(router, "/admin/sales", customerPair.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))

	w = serveWithToken(router, "/unauthenticated", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
