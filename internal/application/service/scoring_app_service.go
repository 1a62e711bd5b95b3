package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/repository"
	domainService "github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/internal/infrastructure/monitoring"
	cachelayer "github.com/turtacn/crs/internal/infrastructure/persistence/redis"
	"github.com/turtacn/crs/internal/ml"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
	"github.com/turtacn/crs/pkg/utils"
)

// ScoringAppService invokes a published service against one record.
type ScoringAppService interface {
	Score(ctx context.Context, name, version string, req *dto.ScoreRequest) (*dto.ScoreResponse, error)
}

// scoringAppServiceImpl resolves the service descriptor, loads the bound
// ensemble, and runs the adapter. Decoded ensembles are cached in memory
// keyed by the descriptor's binding key, so a model rebind (which bumps the
// generation) naturally misses the cache and loads the new artifact. A
// subsequent invoke therefore always scores with the updated model.
type scoringAppServiceImpl struct {
	serviceRepo repository.ServiceRepository
	modelRepo   repository.ModelRepository
	descriptors cachelayer.CacheManager
	adapter     *domainService.ScoringAdapter
	audit       domainService.AuditPublisher
	metrics     *monitoring.Metrics
	log         logger.Logger

	ensembles *cache.Cache
	loads     singleflight.Group
}

// NewScoringAppService creates the scoring application service.
func NewScoringAppService(
	serviceRepo repository.ServiceRepository,
	modelRepo repository.ModelRepository,
	descriptors cachelayer.CacheManager,
	adapter *domainService.ScoringAdapter,
	audit domainService.AuditPublisher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) ScoringAppService {
	return &scoringAppServiceImpl{
		serviceRepo: serviceRepo,
		modelRepo:   modelRepo,
		descriptors: descriptors,
		adapter:     adapter,
		audit:       audit,
		metrics:     metrics,
		log:         log.WithComponent("scoring"),
		ensembles:   cache.New(constants.EnsembleCacheTTL, 2*constants.EnsembleCacheTTL),
	}
}

func (s *scoringAppServiceImpl) Score(ctx context.Context, name, version string, req *dto.ScoreRequest) (*dto.ScoreResponse, error) {
	start := time.Now()
	qualified := name + "@" + version

	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.RecordScore(qualified, "invalid", time.Since(start))
		return nil, err
	}

	svc, err := s.resolveService(ctx, name, version)
	if err != nil {
		s.metrics.RecordScore(qualified, "not_found", time.Since(start))
		return nil, err
	}

	model, err := s.loadEnsemble(ctx, svc)
	if err != nil {
		s.metrics.RecordScore(qualified, "error", time.Since(start))
		return nil, err
	}

	prediction, err := s.adapter.Score(req.ToRecord(), model)
	if err != nil {
		s.metrics.RecordScore(qualified, "error", time.Since(start))
		return nil, errors.ErrSchemaMismatch("record", err.Error())
	}

	event := models.NewAuditEvent(constants.AuditEventScoreRequested).
		ForService(svc.Name, svc.Version, svc.Generation).
		WithModel(svc.ModelID).
		WithDetail("account_id", prediction.AccountID).
		WithDetail("scored_label", prediction.ScoredLabel)
	if clientID, ok := ctx.Value(constants.ContextKeyClientID).(string); ok {
		event.WithClient(clientID)
	}
	if auditErr := s.audit.Publish(ctx, event); auditErr != nil {
		s.log.Warn(ctx, "audit publish failed", logger.String("service", qualified), logger.Error(auditErr))
	}

	s.metrics.RecordScore(qualified, "ok", time.Since(start))
	return dto.FromPrediction(prediction), nil
}

func (s *scoringAppServiceImpl) resolveService(ctx context.Context, name, version string) (*models.Service, error) {
	if svc, err := s.descriptors.GetService(ctx, name, version); err == nil {
		return svc, nil
	}
	svc, err := s.serviceRepo.FindByNameVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if cacheErr := s.descriptors.SetService(ctx, svc); cacheErr != nil {
		s.log.Warn(ctx, "failed to prime service cache", logger.String("service", svc.Qualified()), logger.Error(cacheErr))
	}
	return svc, nil
}

// loadEnsemble returns the decoded ensemble for the descriptor's current
// binding. Concurrent misses for the same binding collapse into one artifact
// load.
func (s *scoringAppServiceImpl) loadEnsemble(ctx context.Context, svc *models.Service) (domainService.ModelHandle, error) {
	key := svc.BindingKey()
	if cached, found := s.ensembles.Get(key); found {
		s.metrics.RecordModelCache("hit")
		return cached.(*ml.GBDT), nil
	}
	s.metrics.RecordModelCache("miss")

	loaded, err, _ := s.loads.Do(key, func() (interface{}, error) {
		artifact, err := s.modelRepo.FindByID(ctx, svc.ModelID)
		if err != nil {
			return nil, err
		}
		model, err := ml.DecodeGBDT(artifact.Payload)
		if err != nil {
			return nil, errors.ErrServerError("stored model artifact is not decodable").
				WithCause(err).
				WithMetadata("model_id", svc.ModelID.String())
		}
		s.ensembles.Set(key, model, cache.DefaultExpiration)
		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return loaded.(*ml.GBDT), nil
}
