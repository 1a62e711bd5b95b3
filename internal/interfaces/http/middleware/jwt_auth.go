// Package middleware holds the gin middleware chain of the serving API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/crs/internal/infrastructure/crypto"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

// extractBearer extracts the token from the Authorization header.
func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireJWT protects routes that require a verified access token. The
// token's subject is stored as the client ID on both the gin context and the
// request context so downstream audit events can attribute the caller.
func RequireJWT(tokens *crypto.JWTManager, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c.Request.Header.Get("Authorization"))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errors.ToErrorResponse(errors.ErrUnauthorized("missing bearer token")))
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			log.Warn(c.Request.Context(), "token verification failed", logger.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.ToErrorResponse(err))
			return
		}

		c.Set(string(constants.ContextKeyClientID), claims.Subject)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyClientID, claims.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
