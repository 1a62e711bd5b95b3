package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

// ErrCacheMiss is returned when a key is absent. Callers fall through to the
// database on a miss.
var ErrCacheMiss = errors.NewError(constants.ErrCodeNotFound, 404, "cache miss", "key not found in cache")

// CacheManager caches published-service records and their rendered swagger
// descriptors. Entries are invalidated whenever the backing service row
// changes, so a cached Service always reflects a generation that was live at
// some point.
type CacheManager interface {
	GetService(ctx context.Context, name, version string) (*models.Service, error)
	SetService(ctx context.Context, svc *models.Service) error
	GetSwagger(ctx context.Context, name, version string) ([]byte, error)
	SetSwagger(ctx context.Context, name, version string, doc []byte) error
	InvalidateService(ctx context.Context, name, version string) error
}

type cacheManagerImpl struct {
	client *redis.Client
	log    logger.Logger
}

// NewCacheManager creates a CacheManager over an established redis client.
func NewCacheManager(client *redis.Client, log logger.Logger) CacheManager {
	return &cacheManagerImpl{client: client, log: log.WithComponent("cache")}
}

func serviceKey(name, version string) string {
	return constants.CacheKeyServicePrefix + name + "@" + version
}

func swaggerKey(name, version string) string {
	return constants.CacheKeySwaggerPrefix + name + "@" + version
}

func (c *cacheManagerImpl) GetService(ctx context.Context, name, version string) (*models.Service, error) {
	val, err := c.client.Get(ctx, serviceKey(name, version)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, errors.ErrCacheOperation(err)
	}
	var svc models.Service
	if err := json.Unmarshal(val, &svc); err != nil {
		// Corrupt entry; drop it so the next read repopulates.
		c.client.Del(ctx, serviceKey(name, version))
		return nil, errors.ErrCacheOperation(err)
	}
	return &svc, nil
}

func (c *cacheManagerImpl) SetService(ctx context.Context, svc *models.Service) error {
	b, err := json.Marshal(svc)
	if err != nil {
		return errors.ErrCacheOperation(err)
	}
	if err := c.client.Set(ctx, serviceKey(svc.Name, svc.Version), b, constants.DescriptorCacheTTL).Err(); err != nil {
		return errors.ErrCacheOperation(err)
	}
	return nil
}

func (c *cacheManagerImpl) GetSwagger(ctx context.Context, name, version string) ([]byte, error) {
	val, err := c.client.Get(ctx, swaggerKey(name, version)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, errors.ErrCacheOperation(err)
	}
	return val, nil
}

func (c *cacheManagerImpl) SetSwagger(ctx context.Context, name, version string, doc []byte) error {
	if err := c.client.Set(ctx, swaggerKey(name, version), doc, constants.DescriptorCacheTTL).Err(); err != nil {
		return errors.ErrCacheOperation(err)
	}
	return nil
}

func (c *cacheManagerImpl) InvalidateService(ctx context.Context, name, version string) error {
	if err := c.client.Del(ctx, serviceKey(name, version), swaggerKey(name, version)).Err(); err != nil {
		return errors.ErrCacheOperation(err)
	}
	return nil
}

// noopCacheManager is used when redis is disabled. Every read misses and
// every write succeeds.
type noopCacheManager struct{}

// NewNoopCacheManager returns a CacheManager that caches nothing.
func NewNoopCacheManager() CacheManager {
	return &noopCacheManager{}
}

func (noopCacheManager) GetService(context.Context, string, string) (*models.Service, error) {
	return nil, ErrCacheMiss
}

func (noopCacheManager) SetService(context.Context, *models.Service) error { return nil }

func (noopCacheManager) GetSwagger(context.Context, string, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (noopCacheManager) SetSwagger(context.Context, string, string, []byte) error { return nil }

func (noopCacheManager) InvalidateService(context.Context, string, string) error { return nil }
