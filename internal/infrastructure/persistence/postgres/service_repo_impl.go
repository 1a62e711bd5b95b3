package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/repository"
	crserrors "github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

// ServiceRepoImpl implements ServiceRepository on gorm.
type ServiceRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewServiceRepository creates the gorm-backed service registry.
func NewServiceRepository(db *gorm.DB, log logger.Logger) repository.ServiceRepository {
	return &ServiceRepoImpl{
		db:     db,
		logger: log.WithComponent("service_repo"),
	}
}

// Create persists a new descriptor; the unique (name, version) index turns a
// racing duplicate publish into a conflict.
func (r *ServiceRepoImpl) Create(ctx context.Context, svc *models.Service) error {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		if isUniqueViolation(err) {
			return crserrors.ErrServiceExists(svc.Name, svc.Version)
		}
		r.logger.Error(ctx, "Failed to create service", err,
			logger.String("service", svc.Qualified()),
		)
		return crserrors.ErrDatabaseOperation(err)
	}

	r.logger.Info(ctx, "Service created",
		logger.String("service", svc.Qualified()),
		logger.String("model_id", svc.ModelID.String()),
	)
	return nil
}

// FindByNameVersion retrieves a descriptor by its identity.
func (r *ServiceRepoImpl) FindByNameVersion(ctx context.Context, name, version string) (*models.Service, error) {
	var svc models.Service
	err := r.db.WithContext(ctx).
		Where("name = ? AND version = ?", name, version).
		First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, crserrors.ErrServiceNotFound(name, version)
		}
		r.logger.Error(ctx, "Failed to retrieve service", err,
			logger.String("name", name),
			logger.String("version", version),
		)
		return nil, crserrors.ErrDatabaseOperation(err)
	}
	return &svc, nil
}

// List returns descriptors ordered by name then version.
func (r *ServiceRepoImpl) List(ctx context.Context, limit, offset int) ([]*models.Service, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Service{}).Count(&total).Error; err != nil {
		return nil, 0, crserrors.ErrDatabaseOperation(err)
	}

	var services []*models.Service
	err := r.db.WithContext(ctx).
		Order("name ASC, version ASC").
		Limit(limit).
		Offset(offset).
		Find(&services).Error
	if err != nil {
		return nil, 0, crserrors.ErrDatabaseOperation(err)
	}
	return services, total, nil
}

// RebindModel swaps the bound model under compare-and-swap on the generation.
// The WHERE clause carries the expected generation, so a zero rows-affected
// result distinguishes a stale expectation from a missing service.
func (r *ServiceRepoImpl) RebindModel(ctx context.Context, name, version string, newModelID uuid.UUID, expectedGeneration int64) (*models.Service, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("name = ? AND version = ? AND generation = ?", name, version, expectedGeneration).
		Updates(map[string]interface{}{
			"model_id":   newModelID,
			"generation": gorm.Expr("generation + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to rebind model", result.Error,
			logger.String("name", name),
			logger.String("version", version),
		)
		return nil, crserrors.ErrDatabaseOperation(result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the service is gone or the generation moved underneath us.
		if _, err := r.FindByNameVersion(ctx, name, version); err != nil {
			return nil, err
		}
		return nil, crserrors.ErrGenerationConflict(name, version, expectedGeneration)
	}

	svc, err := r.FindByNameVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "Service model rebound",
		logger.String("service", svc.Qualified()),
		logger.String("model_id", newModelID.String()),
		logger.Int64("generation", svc.Generation),
	)
	return svc, nil
}

// Delete hard-removes the descriptor so later fetches are not_found.
func (r *ServiceRepoImpl) Delete(ctx context.Context, name, version string) error {
	result := r.db.WithContext(ctx).
		Where("name = ? AND version = ?", name, version).
		Delete(&models.Service{})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to delete service", result.Error,
			logger.String("name", name),
			logger.String("version", version),
		)
		return crserrors.ErrDatabaseOperation(result.Error)
	}
	if result.RowsAffected == 0 {
		return crserrors.ErrServiceNotFound(name, version)
	}

	r.logger.Info(ctx, "Service deleted",
		logger.String("name", name),
		logger.String("version", version),
	)
	return nil
}

// isUniqueViolation matches duplicate-key failures across both drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
