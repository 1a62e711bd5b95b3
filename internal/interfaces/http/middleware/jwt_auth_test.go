package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/infrastructure/crypto"
	"github.com/turtacn/crs/internal/infrastructure/kms"
	"github.com/turtacn/crs/internal/interfaces/http/middleware"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/logger"
)

func newProtectedRouter(t *testing.T) (*gin.Engine, *crypto.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	secrets, err := kms.NewStaticProvider("middleware-test-secret")
	require.NoError(t, err)
	tokens := crypto.NewJWTManager(&config.JWTConfig{Issuer: "crs-model-serving", TokenTTL: 3600}, secrets, logger.NewNoopLogger())

	engine := gin.New()
	engine.GET("/protected", middleware.RequireJWT(tokens, logger.NewNoopLogger()), func(c *gin.Context) {
		clientID := c.GetString(string(constants.ContextKeyClientID))
		c.JSON(http.StatusOK, gin.H{"client_id": clientID})
	})
	return engine, tokens
}

func TestRequireJWT_ValidToken(t *testing.T) {
	engine, tokens := newProtectedRouter(t)
	token, _, err := tokens.Issue(t.Context(), "analyst")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"client_id":"analyst"`)
}

func TestRequireJWT_MissingHeader(t *testing.T) {
	engine, _ := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireJWT_MalformedHeader(t *testing.T) {
	engine, tokens := newProtectedRouter(t)
	token, _, err := tokens.Issue(t.Context(), "analyst")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireJWT_TamperedToken(t *testing.T) {
	engine, tokens := newProtectedRouter(t)
	token, _, err := tokens.Issue(t.Context(), "analyst")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
