package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/crs/internal/domain/models"
)

// ModelRepository stores immutable trained model artifacts.
type ModelRepository interface {
	// Save persists a new artifact.
	Save(ctx context.Context, artifact *models.ModelArtifact) error

	// FindByID retrieves an artifact, verifying its checksum.
	FindByID(ctx context.Context, id uuid.UUID) (*models.ModelArtifact, error)

	// List returns artifacts newest first, paged.
	List(ctx context.Context, limit, offset int) ([]*models.ModelArtifact, int64, error)

	// DeleteOrphans removes artifacts not referenced by any service and older
	// than the retention window, returning how many were removed.
	DeleteOrphans(ctx context.Context, keepDays int) (int64, error)
}
