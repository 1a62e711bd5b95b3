package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/domain/models"
	domainService "github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/internal/infrastructure/crypto"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
	"github.com/turtacn/crs/pkg/utils"
)

// AuthAppService exchanges client credentials for access tokens.
type AuthAppService interface {
	IssueToken(ctx context.Context, req *dto.TokenRequest) (*dto.TokenResponse, error)
}

type authAppServiceImpl struct {
	clients map[string]string
	tokens  *crypto.JWTManager
	audit   domainService.AuditPublisher
	log     logger.Logger
}

// NewAuthAppService creates the auth application service over the configured
// client credential set.
func NewAuthAppService(cfg *config.AuthConfig, tokens *crypto.JWTManager, audit domainService.AuditPublisher, log logger.Logger) AuthAppService {
	return &authAppServiceImpl{
		clients: cfg.Clients,
		tokens:  tokens,
		audit:   audit,
		log:     log.WithComponent("auth"),
	}
}

func (s *authAppServiceImpl) IssueToken(ctx context.Context, req *dto.TokenRequest) (*dto.TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	expected, known := s.clients[req.ClientID]
	// Compare even for unknown clients so timing does not reveal which IDs
	// exist.
	match := subtle.ConstantTimeCompare([]byte(expected), []byte(req.ClientSecret)) == 1
	if !known || !match {
		s.log.Warn(ctx, "client authentication failed", logger.String("client_id", req.ClientID))
		s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventAuthFailed).WithClient(req.ClientID))
		return nil, errors.ErrUnauthorized("invalid client credentials")
	}

	token, expiresAt, err := s.tokens.Issue(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenIssued).WithClient(req.ClientID))
	s.log.Info(ctx, "access token issued", logger.String("client_id", req.ClientID))
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().Unix(),
	}, nil
}

func (s *authAppServiceImpl) publishAudit(ctx context.Context, event *models.AuditEvent) {
	if err := s.audit.Publish(ctx, event); err != nil {
		s.log.Warn(ctx, "audit publish failed", logger.String("event_type", string(event.Type)), logger.Error(err))
	}
}
