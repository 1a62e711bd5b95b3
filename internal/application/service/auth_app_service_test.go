package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/crs/internal/application/dto"
	appservice "github.com/turtacn/crs/internal/application/service"
	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/infrastructure/crypto"
	"github.com/turtacn/crs/internal/infrastructure/kms"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

func newAuthFixture(t *testing.T) (appservice.AuthAppService, *crypto.JWTManager, *recordingPublisher) {
	t.Helper()
	secrets, err := kms.NewStaticProvider("auth-test-secret")
	require.NoError(t, err)
	tokens := crypto.NewJWTManager(&config.JWTConfig{Issuer: "crs-model-serving", TokenTTL: 3600}, secrets, logger.NewNoopLogger())
	audit := &recordingPublisher{}
	auth := appservice.NewAuthAppService(&config.AuthConfig{
		Clients: map[string]string{"analyst": "s3cr3t"},
	}, tokens, audit, logger.NewNoopLogger())
	return auth, tokens, audit
}

func TestAuth_IssueTokenWithValidCredentials(t *testing.T) {
	auth, tokens, audit := newAuthFixture(t)

	resp, err := auth.IssueToken(context.Background(), &dto.TokenRequest{
		ClientID:     "analyst",
		ClientSecret: "s3cr3t",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.InDelta(t, 3600, resp.ExpiresIn, 5)

	claims, err := tokens.Verify(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "analyst", claims.Subject)
	assert.Contains(t, audit.eventTypes(), "token_issued")
}

func TestAuth_RejectsWrongSecret(t *testing.T) {
	auth, _, audit := newAuthFixture(t)

	_, err := auth.IssueToken(context.Background(), &dto.TokenRequest{
		ClientID:     "analyst",
		ClientSecret: "wrong",
	})
	require.Error(t, err)
	crsErr, ok := errors.AsCRSError(err)
	require.True(t, ok)
	assert.Equal(t, 401, crsErr.HTTPStatus())
	assert.Contains(t, audit.eventTypes(), "authentication_failed")
}

func TestAuth_RejectsUnknownClient(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.IssueToken(context.Background(), &dto.TokenRequest{
		ClientID:     "stranger",
		ClientSecret: "s3cr3t",
	})
	require.Error(t, err)
	crsErr, ok := errors.AsCRSError(err)
	require.True(t, ok)
	assert.Equal(t, 401, crsErr.HTTPStatus())
}

func TestAuth_RejectsMissingFields(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.IssueToken(context.Background(), &dto.TokenRequest{ClientID: "analyst"})
	require.Error(t, err)
	crsErr, ok := errors.AsCRSError(err)
	require.True(t, ok)
	assert.Equal(t, 400, crsErr.HTTPStatus())
}
