package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/repository"
	crserrors "github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

// ModelRepoImpl implements ModelRepository on gorm.
type ModelRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewModelRepository creates the gorm-backed artifact store.
func NewModelRepository(db *gorm.DB, log logger.Logger) repository.ModelRepository {
	return &ModelRepoImpl{
		db:     db,
		logger: log.WithComponent("model_repo"),
	}
}

// Save persists a new artifact.
func (r *ModelRepoImpl) Save(ctx context.Context, artifact *models.ModelArtifact) error {
	if err := r.db.WithContext(ctx).Create(artifact).Error; err != nil {
		r.logger.Error(ctx, "Failed to save model artifact", err,
			logger.String("model_id", artifact.ID.String()),
		)
		return crserrors.ErrDatabaseOperation(err)
	}

	r.logger.Info(ctx, "Model artifact saved",
		logger.String("model_id", artifact.ID.String()),
		logger.String("algorithm", string(artifact.Algorithm)),
		logger.Int("trained_rows", artifact.TrainedRows),
	)
	return nil
}

// FindByID retrieves an artifact and verifies its checksum before handing it
// out; a corrupt payload must never reach the scoring path.
func (r *ModelRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.ModelArtifact, error) {
	var artifact models.ModelArtifact
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&artifact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, crserrors.ErrModelNotFound(id.String())
		}
		r.logger.Error(ctx, "Failed to retrieve model artifact", err,
			logger.String("model_id", id.String()),
		)
		return nil, crserrors.ErrDatabaseOperation(err)
	}

	if !artifact.VerifyChecksum() {
		r.logger.Error(ctx, "Model artifact checksum mismatch", nil,
			logger.String("model_id", id.String()),
		)
		return nil, crserrors.ErrServerError("model artifact payload is corrupt").
			WithMetadata("model_id", id.String())
	}
	return &artifact, nil
}

// List returns artifacts newest first.
func (r *ModelRepoImpl) List(ctx context.Context, limit, offset int) ([]*models.ModelArtifact, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ModelArtifact{}).Count(&total).Error; err != nil {
		return nil, 0, crserrors.ErrDatabaseOperation(err)
	}

	var artifacts []*models.ModelArtifact
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&artifacts).Error
	if err != nil {
		return nil, 0, crserrors.ErrDatabaseOperation(err)
	}
	return artifacts, total, nil
}

// DeleteOrphans removes artifacts with no referencing service that are older
// than the retention window.
func (r *ModelRepoImpl) DeleteOrphans(ctx context.Context, keepDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)

	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Where("id NOT IN (?)",
			r.db.Model(&models.Service{}).Select("model_id"),
		).
		Delete(&models.ModelArtifact{})
	if result.Error != nil {
		return 0, crserrors.ErrDatabaseOperation(result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Info(ctx, "Orphan model artifacts removed",
			logger.Int64("count", result.RowsAffected),
			logger.Int("keep_days", keepDays),
		)
	}
	return result.RowsAffected, nil
}
