// Package repository defines the storage interfaces of the CRS domain.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/crs/internal/domain/models"
)

// ServiceRepository is the explicit registry of published scoring services:
// a versioned (name, version) -> model binding with compare-and-swap update
// and hard delete. No singletons; implementations live in infrastructure.
type ServiceRepository interface {
	// Create persists a new descriptor. Returns a conflict error when the
	// (name, version) identity is already taken.
	Create(ctx context.Context, svc *models.Service) error

	// FindByNameVersion retrieves a descriptor. Returns a not_found error
	// when no such service exists, never a stale row.
	FindByNameVersion(ctx context.Context, name, version string) (*models.Service, error)

	// List returns descriptors ordered by name then version, paged.
	List(ctx context.Context, limit, offset int) ([]*models.Service, int64, error)

	// RebindModel atomically replaces the bound model if and only if the
	// stored generation equals expectedGeneration, bumping the generation.
	// Returns a conflict error on a stale expectation and not_found when the
	// service does not exist.
	RebindModel(ctx context.Context, name, version string, newModelID uuid.UUID, expectedGeneration int64) (*models.Service, error)

	// Delete hard-removes the descriptor. Returns not_found when absent.
	Delete(ctx context.Context, name, version string) error
}
