//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/turtacn/crs/internal/domain/models"
	postgres_infra "github.com/turtacn/crs/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/crs/pkg/constants"
	crserrors "github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
)

func startPostgres(t *testing.T, ctx context.Context) *gorm.DB {
	t.Helper()
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("crs_test"),
		postgres.WithUsername("crs"),
		postgres.WithPassword("crs"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Service{}, &models.ModelArtifact{}))
	return db
}

func storedArtifact(t *testing.T, ctx context.Context, repo interface {
	Save(ctx context.Context, artifact *models.ModelArtifact) error
}) *models.ModelArtifact {
	t.Helper()
	artifact := models.NewModelArtifact(
		constants.AlgorithmGBDT,
		[]byte(`{"trees":[]}`),
		models.FeatureNames,
		models.TrainingMetrics{Accuracy: 0.9, AUC: 0.95},
		100,
	)
	require.NoError(t, repo.Save(ctx, artifact))
	return artifact
}

func TestServiceRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t, ctx)
	log := logger.NewNoopLogger()

	serviceRepo := postgres_infra.NewServiceRepository(db, log)
	modelRepo := postgres_infra.NewModelRepository(db, log)
	artifact := storedArtifact(t, ctx, modelRepo)

	svc := models.NewService("creditdefault", "1.0.0", artifact.ID, models.DefaultCreditSchema(), "production scorer")
	require.NoError(t, serviceRepo.Create(ctx, svc))
	assert.Equal(t, int64(1), svc.Generation)

	// Duplicate (name, version) must hit the unique index.
	dup := models.NewService("creditdefault", "1.0.0", artifact.ID, models.DefaultCreditSchema(), "")
	err := serviceRepo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, crserrors.IsConflict(err))

	found, err := serviceRepo.FindByNameVersion(ctx, "creditdefault", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, artifact.ID, found.ModelID)
	assert.Equal(t, int64(1), found.Generation)

	_, err = serviceRepo.FindByNameVersion(ctx, "creditdefault", "9.9.9")
	require.Error(t, err)
	assert.True(t, crserrors.IsNotFound(err))
}

func TestServiceRepository_RebindModelCAS(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t, ctx)
	log := logger.NewNoopLogger()

	serviceRepo := postgres_infra.NewServiceRepository(db, log)
	modelRepo := postgres_infra.NewModelRepository(db, log)
	first := storedArtifact(t, ctx, modelRepo)
	second := storedArtifact(t, ctx, modelRepo)

	svc := models.NewService("creditdefault", "1.0.0", first.ID, models.DefaultCreditSchema(), "")
	require.NoError(t, serviceRepo.Create(ctx, svc))

	rebound, err := serviceRepo.RebindModel(ctx, "creditdefault", "1.0.0", second.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, rebound.ModelID)
	assert.Equal(t, int64(2), rebound.Generation)

	// Replaying the same expectation must fail: the generation moved on.
	_, err = serviceRepo.RebindModel(ctx, "creditdefault", "1.0.0", first.ID, 1)
	require.Error(t, err)
	assert.True(t, crserrors.IsConflict(err))

	_, err = serviceRepo.RebindModel(ctx, "missing", "1.0.0", second.ID, 1)
	require.Error(t, err)
	assert.True(t, crserrors.IsNotFound(err))
}

func TestServiceRepository_DeleteAndRepublish(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t, ctx)
	log := logger.NewNoopLogger()

	serviceRepo := postgres_infra.NewServiceRepository(db, log)
	modelRepo := postgres_infra.NewModelRepository(db, log)
	artifact := storedArtifact(t, ctx, modelRepo)

	svc := models.NewService("creditdefault", "1.0.0", artifact.ID, models.DefaultCreditSchema(), "")
	require.NoError(t, serviceRepo.Create(ctx, svc))
	require.NoError(t, serviceRepo.Delete(ctx, "creditdefault", "1.0.0"))

	err := serviceRepo.Delete(ctx, "creditdefault", "1.0.0")
	require.Error(t, err)
	assert.True(t, crserrors.IsNotFound(err))

	// The identity is free again after deletion.
	again := models.NewService("creditdefault", "1.0.0", artifact.ID, models.DefaultCreditSchema(), "")
	require.NoError(t, serviceRepo.Create(ctx, again))
	assert.Equal(t, int64(1), again.Generation)
	assert.NotEqual(t, svc.ID, again.ID)
}

func TestModelRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t, ctx)
	log := logger.NewNoopLogger()

	modelRepo := postgres_infra.NewModelRepository(db, log)
	artifact := storedArtifact(t, ctx, modelRepo)

	found, err := modelRepo.FindByID(ctx, artifact.ID)
	require.NoError(t, err)
	assert.Equal(t, artifact.Checksum, found.Checksum)
	assert.Equal(t, constants.AlgorithmGBDT, found.Algorithm)

	_, err = modelRepo.FindByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, crserrors.IsNotFound(err))

	artifacts, total, err := modelRepo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, artifacts, 1)
}
