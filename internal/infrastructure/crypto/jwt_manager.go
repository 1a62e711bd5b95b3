// Package crypto issues and verifies the HS256 access tokens that guard the
// service lifecycle and scoring endpoints.
package crypto

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

// Claims carried by an issued access token.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager signs and verifies access tokens with a secret obtained from the
// SecretProvider on each operation, so a rotated secret takes effect without a
// restart.
type JWTManager struct {
	secrets service.SecretProvider
	issuer  string
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time
}

// NewJWTManager creates a JWTManager from configuration.
func NewJWTManager(cfg *config.JWTConfig, secrets service.SecretProvider, log logger.Logger) *JWTManager {
	return &JWTManager{
		secrets: secrets,
		issuer:  cfg.Issuer,
		ttl:     cfg.TTL(),
		log:     log.WithComponent("jwt"),
		now:     time.Now,
	}
}

// Issue creates a signed token for the given client. Returns the compact
// token string and its expiry.
func (m *JWTManager) Issue(ctx context.Context, clientID string) (string, time.Time, error) {
	secret, err := m.secrets.SigningSecret(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   clientID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, signErr := token.SignedString(secret)
	if signErr != nil {
		m.log.Error(ctx, "failed to sign access token", signErr)
		return "", time.Time{}, errors.ErrServerError("could not sign token").WithCause(signErr)
	}
	return signed, expiresAt, nil
}

// Verify parses a compact token and returns its claims. Expired or malformed
// tokens yield an unauthorized error.
func (m *JWTManager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	secret, err := m.secrets.SigningSecret(ctx)
	if err != nil {
		return nil, err
	}

	token, parseErr := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())

	if parseErr != nil {
		if stderrors.Is(parseErr, jwt.ErrTokenExpired) {
			return nil, errors.ErrUnauthorized("token expired")
		}
		return nil, errors.ErrUnauthorized("invalid token").WithCause(parseErr)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.ErrUnauthorized("invalid token")
	}
	return claims, nil
}
