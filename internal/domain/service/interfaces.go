package service

import (
	"context"

	"github.com/turtacn/crs/internal/domain/models"
)

// AuditPublisher emits service lifecycle events to the audit stream.
// Implementations must treat publishing as fire-and-forget: a failed publish
// is logged and retried by the implementation, never surfaced to the caller's
// request path.
type AuditPublisher interface {
	Publish(ctx context.Context, event *models.AuditEvent) error
	Close() error
}

// SecretProvider supplies the JWT signing secret. The Vault implementation
// lives in infrastructure; a static env-backed one covers local mode.
type SecretProvider interface {
	SigningSecret(ctx context.Context) ([]byte, error)
}
