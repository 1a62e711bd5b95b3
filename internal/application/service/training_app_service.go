package service

import (
	"context"
	"time"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/repository"
	domainService "github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/internal/infrastructure/monitoring"
	"github.com/turtacn/crs/internal/ml"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
	"github.com/turtacn/crs/pkg/utils"
)

// TrainingAppService runs a training pipeline end to end: load the labeled
// dataset, split, fit the ensemble, evaluate on the holdout, and persist the
// resulting artifact.
type TrainingAppService interface {
	Train(ctx context.Context, req *dto.TrainModelRequest) (*dto.TrainModelResponse, error)

	// Prune removes artifacts no service references anymore, once they age
	// past the retention window.
	Prune(ctx context.Context, req *dto.PruneModelsRequest) (*dto.PruneModelsResponse, error)
}

type trainingAppServiceImpl struct {
	modelRepo repository.ModelRepository
	audit     domainService.AuditPublisher
	metrics   *monitoring.Metrics
	defaults  *config.TrainingConfig
	log       logger.Logger
}

// NewTrainingAppService creates the training application service.
func NewTrainingAppService(
	modelRepo repository.ModelRepository,
	audit domainService.AuditPublisher,
	metrics *monitoring.Metrics,
	defaults *config.TrainingConfig,
	log logger.Logger,
) TrainingAppService {
	return &trainingAppServiceImpl{
		modelRepo: modelRepo,
		audit:     audit,
		metrics:   metrics,
		defaults:  defaults,
		log:       log.WithComponent("training"),
	}
}

func (s *trainingAppServiceImpl) Train(ctx context.Context, req *dto.TrainModelRequest) (*dto.TrainModelResponse, error) {
	start := time.Now()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	params, holdoutFraction, seed := s.effectiveParams(req)

	dataset, err := ml.LoadCSV(req.DatasetPath)
	if err != nil {
		s.metrics.RecordTraining("error", time.Since(start))
		return nil, errors.ErrInvalidRequest("could not load dataset").
			WithCause(err).
			WithMetadata("dataset_path", req.DatasetPath)
	}

	train, holdout := dataset.Split(holdoutFraction, seed)
	s.log.Info(ctx, "dataset loaded",
		logger.String("path", req.DatasetPath),
		logger.Int("train_rows", train.Len()),
		logger.Int("holdout_rows", holdout.Len()),
	)

	model, err := ml.TrainGBDT(train.Features, train.Labels, params)
	if err != nil {
		s.metrics.RecordTraining("error", time.Since(start))
		return nil, errors.ErrTrainingFailed(err.Error())
	}

	eval, err := ml.Evaluate(model, holdout)
	if err != nil {
		s.metrics.RecordTraining("error", time.Since(start))
		return nil, errors.ErrTrainingFailed(err.Error())
	}

	payload, err := model.Encode()
	if err != nil {
		s.metrics.RecordTraining("error", time.Since(start))
		return nil, errors.ErrServerError("could not encode trained model").WithCause(err)
	}

	artifact := models.NewModelArtifact(constants.AlgorithmGBDT, payload, models.FeatureNames, models.TrainingMetrics{
		Accuracy:     eval.Accuracy,
		AUC:          eval.AUC,
		PositiveRate: eval.PositiveRate,
		HoldoutRows:  eval.Rows,
	}, train.Len())

	if err := s.modelRepo.Save(ctx, artifact); err != nil {
		s.metrics.RecordTraining("error", time.Since(start))
		return nil, err
	}

	event := models.NewAuditEvent(constants.AuditEventModelTrained).
		WithModel(artifact.ID).
		WithDetail("accuracy", eval.Accuracy).
		WithDetail("auc", eval.AUC).
		WithDetail("trained_rows", train.Len())
	if clientID, ok := ctx.Value(constants.ContextKeyClientID).(string); ok {
		event.WithClient(clientID)
	}
	if auditErr := s.audit.Publish(ctx, event); auditErr != nil {
		s.log.Warn(ctx, "audit publish failed", logger.String("model_id", artifact.ID.String()), logger.Error(auditErr))
	}

	s.metrics.RecordTraining("ok", time.Since(start))
	s.log.Info(ctx, "model trained",
		logger.String("model_id", artifact.ID.String()),
		logger.Float64("accuracy", eval.Accuracy),
		logger.Float64("auc", eval.AUC),
		logger.Duration("elapsed", time.Since(start)),
	)
	return dto.FromModelArtifact(artifact), nil
}

func (s *trainingAppServiceImpl) Prune(ctx context.Context, req *dto.PruneModelsRequest) (*dto.PruneModelsResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	removed, err := s.modelRepo.DeleteOrphans(ctx, req.KeepDays)
	if err != nil {
		return nil, err
	}

	if removed > 0 {
		event := models.NewAuditEvent(constants.AuditEventModelsPruned).
			WithDetail("removed", removed).
			WithDetail("keep_days", req.KeepDays)
		if clientID, ok := ctx.Value(constants.ContextKeyClientID).(string); ok {
			event.WithClient(clientID)
		}
		if auditErr := s.audit.Publish(ctx, event); auditErr != nil {
			s.log.Warn(ctx, "audit publish failed", logger.Int64("removed", removed), logger.Error(auditErr))
		}
	}

	s.log.Info(ctx, "orphan artifacts pruned",
		logger.Int64("removed", removed),
		logger.Int("keep_days", req.KeepDays),
	)
	return &dto.PruneModelsResponse{Removed: removed, KeepDays: req.KeepDays}, nil
}

// effectiveParams overlays request hyperparameters on the configured defaults.
func (s *trainingAppServiceImpl) effectiveParams(req *dto.TrainModelRequest) (ml.Params, float64, int64) {
	params := ml.Params{
		Rounds:       s.defaults.Rounds,
		MaxDepth:     s.defaults.MaxDepth,
		LearningRate: s.defaults.LearningRate,
	}
	if req.Rounds > 0 {
		params.Rounds = req.Rounds
	}
	if req.MaxDepth > 0 {
		params.MaxDepth = req.MaxDepth
	}
	if req.LearningRate > 0 {
		params.LearningRate = req.LearningRate
	}
	holdout := s.defaults.HoldoutFraction
	if req.HoldoutFraction > 0 {
		holdout = req.HoldoutFraction
	}
	seed := s.defaults.Seed
	if req.Seed != 0 {
		seed = req.Seed
	}
	return params, holdout, seed
}
