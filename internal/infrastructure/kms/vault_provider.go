// Package kms supplies the JWT signing secret, from HashiCorp Vault or from
// static configuration.
package kms

import (
	"context"
	"fmt"
	"path"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/patrickmn/go-cache"

	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

const secretCacheKey = "jwt:signing_secret"

// VaultProvider reads the signing secret from a Vault KV v2 mount. The
// secret is cached in memory for a short TTL so token issuance does not hit
// Vault on every request.
type VaultProvider struct {
	client *vault.Client
	cache  *cache.Cache
	log    logger.Logger
	cfg    *config.VaultConfig
}

// NewVaultProvider connects to Vault and returns a SecretProvider over it.
func NewVaultProvider(cfg *config.VaultConfig, log logger.Logger) (service.SecretProvider, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address
	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	return &VaultProvider{
		client: client,
		cache:  cache.New(1*time.Minute, 5*time.Minute),
		log:    log.WithComponent("kms"),
		cfg:    cfg,
	}, nil
}

// SigningSecret returns the HMAC secret stored under the configured KV path.
// The secret lives at <mount>/data/<path> with a "secret" field.
func (p *VaultProvider) SigningSecret(ctx context.Context) ([]byte, error) {
	if cached, found := p.cache.Get(secretCacheKey); found {
		return cached.([]byte), nil
	}

	readPath := path.Join(p.cfg.MountPath, "data", p.cfg.SecretPath)
	secret, err := p.client.Logical().ReadWithContext(ctx, readPath)
	if err != nil {
		p.log.Error(ctx, "failed to read signing secret from vault", err,
			logger.String("path", readPath),
		)
		return nil, errors.ErrUnavailable("secret store unreachable").WithCause(err)
	}
	if secret == nil || secret.Data["data"] == nil {
		return nil, errors.ErrServerError("signing secret not found in vault").
			WithMetadata("path", readPath)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.ErrServerError("unexpected secret format in vault")
	}
	value, ok := data["secret"].(string)
	if !ok || value == "" {
		return nil, errors.ErrServerError("signing secret missing 'secret' field")
	}

	raw := []byte(value)
	p.cache.Set(secretCacheKey, raw, cache.DefaultExpiration)
	return raw, nil
}

// StaticProvider serves a secret from configuration. Used when Vault is
// disabled, typically in local or test deployments.
type StaticProvider struct {
	secret []byte
}

// NewStaticProvider wraps a config-sourced secret.
func NewStaticProvider(secret string) (service.SecretProvider, error) {
	if secret == "" {
		return nil, errors.ErrServerError("jwt secret must not be empty when vault is disabled")
	}
	return &StaticProvider{secret: []byte(secret)}, nil
}

// SigningSecret returns the configured secret.
func (p *StaticProvider) SigningSecret(context.Context) ([]byte, error) {
	return p.secret, nil
}
