// Package service provides application-level services that orchestrate the
// domain layer: the service registry lifecycle, scoring, training, and token
// issuance.
package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/repository"
	domainService "github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/internal/infrastructure/monitoring"
	cachelayer "github.com/turtacn/crs/internal/infrastructure/persistence/redis"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
	"github.com/turtacn/crs/pkg/logger"
	"github.com/turtacn/crs/pkg/utils"
)

// RegistryAppService manages the lifecycle of published scoring services:
// publish, fetch, list, model update, delete, and descriptor rendering.
type RegistryAppService interface {
	// Publish binds a trained model to a new (name, version) identity.
	Publish(ctx context.Context, req *dto.PublishServiceRequest) (*dto.ServiceResponse, error)

	// Fetch returns the descriptor of one published service.
	Fetch(ctx context.Context, name, version string) (*dto.ServiceResponse, error)

	// List pages through the service catalog.
	List(ctx context.Context, req *dto.ListServicesRequest) (*dto.ListServicesResponse, error)

	// Swagger renders the service's interface descriptor as a swagger 2.0 doc.
	Swagger(ctx context.Context, name, version string) ([]byte, error)

	// UpdateModel rebinds the service to a new model artifact, guarded by the
	// caller's expected generation.
	UpdateModel(ctx context.Context, name, version string, req *dto.UpdateModelRequest) (*dto.ServiceResponse, error)

	// Delete unpublishes the service. The identity becomes invocable-never,
	// and republishing the same name+version starts a fresh descriptor.
	Delete(ctx context.Context, name, version string) error
}

type registryAppServiceImpl struct {
	serviceRepo repository.ServiceRepository
	modelRepo   repository.ModelRepository
	cache       cachelayer.CacheManager
	audit       domainService.AuditPublisher
	metrics     *monitoring.Metrics
	log         logger.Logger
}

// NewRegistryAppService creates the registry application service.
func NewRegistryAppService(
	serviceRepo repository.ServiceRepository,
	modelRepo repository.ModelRepository,
	cache cachelayer.CacheManager,
	audit domainService.AuditPublisher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) RegistryAppService {
	return &registryAppServiceImpl{
		serviceRepo: serviceRepo,
		modelRepo:   modelRepo,
		cache:       cache,
		audit:       audit,
		metrics:     metrics,
		log:         log.WithComponent("registry"),
	}
}

func (s *registryAppServiceImpl) Publish(ctx context.Context, req *dto.PublishServiceRequest) (*dto.ServiceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		return nil, errors.ErrInvalidRequest("model_id is not a valid UUID")
	}

	// The artifact must exist before a service may point at it.
	artifact, err := s.modelRepo.FindByID(ctx, modelID)
	if err != nil {
		s.metrics.RecordLifecycleOp("publish", "error")
		return nil, err
	}

	svc := models.NewService(req.Name, req.Version, artifact.ID, models.DefaultCreditSchema(), req.Description)
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		s.metrics.RecordLifecycleOp("publish", "conflict")
		return nil, err
	}

	if cacheErr := s.cache.SetService(ctx, svc); cacheErr != nil {
		s.log.Warn(ctx, "failed to prime service cache", logger.String("service", svc.Qualified()), logger.Error(cacheErr))
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventServicePublished).
		ForService(svc.Name, svc.Version, svc.Generation).
		WithModel(svc.ModelID))
	s.metrics.RecordLifecycleOp("publish", "ok")
	s.log.Info(ctx, "service published",
		logger.String("service", svc.Qualified()),
		logger.String("model_id", svc.ModelID.String()),
	)
	return dto.FromService(svc), nil
}

func (s *registryAppServiceImpl) Fetch(ctx context.Context, name, version string) (*dto.ServiceResponse, error) {
	svc, err := s.resolve(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return dto.FromService(svc), nil
}

func (s *registryAppServiceImpl) List(ctx context.Context, req *dto.ListServicesRequest) (*dto.ListServicesResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	services, total, err := s.serviceRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListServicesResponse{
		Services:   make([]*dto.ServiceResponse, 0, len(services)),
		Pagination: dto.NewPagination(page, pageSize, total),
	}
	for _, svc := range services {
		resp.Services = append(resp.Services, dto.FromService(svc))
	}
	return resp, nil
}

func (s *registryAppServiceImpl) Swagger(ctx context.Context, name, version string) ([]byte, error) {
	if doc, err := s.cache.GetSwagger(ctx, name, version); err == nil {
		return doc, nil
	}

	svc, err := s.resolve(ctx, name, version)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(svc.InterfaceDescriptor())
	if err != nil {
		return nil, errors.ErrServerError("could not render interface descriptor").WithCause(err)
	}
	if cacheErr := s.cache.SetSwagger(ctx, name, version, doc); cacheErr != nil {
		s.log.Warn(ctx, "failed to cache swagger doc", logger.String("service", svc.Qualified()), logger.Error(cacheErr))
	}
	return doc, nil
}

func (s *registryAppServiceImpl) UpdateModel(ctx context.Context, name, version string, req *dto.UpdateModelRequest) (*dto.ServiceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		return nil, errors.ErrInvalidRequest("model_id is not a valid UUID")
	}
	artifact, err := s.modelRepo.FindByID(ctx, modelID)
	if err != nil {
		s.metrics.RecordLifecycleOp("update", "error")
		return nil, err
	}

	// Invalidate before and after the swap so a concurrent reader cannot
	// reinstate the old binding between our write and our invalidation.
	if cacheErr := s.cache.InvalidateService(ctx, name, version); cacheErr != nil {
		s.log.Warn(ctx, "failed to invalidate service cache", logger.String("service", name+"@"+version), logger.Error(cacheErr))
	}
	svc, err := s.serviceRepo.RebindModel(ctx, name, version, artifact.ID, req.ExpectedGeneration)
	if err != nil {
		if errors.IsConflict(err) {
			s.metrics.RecordLifecycleOp("update", "conflict")
		} else {
			s.metrics.RecordLifecycleOp("update", "error")
		}
		return nil, err
	}
	if cacheErr := s.cache.InvalidateService(ctx, name, version); cacheErr != nil {
		s.log.Warn(ctx, "failed to invalidate service cache", logger.String("service", svc.Qualified()), logger.Error(cacheErr))
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventServiceUpdated).
		ForService(svc.Name, svc.Version, svc.Generation).
		WithModel(svc.ModelID))
	s.metrics.RecordLifecycleOp("update", "ok")
	s.log.Info(ctx, "service model rebound",
		logger.String("service", svc.Qualified()),
		logger.String("model_id", svc.ModelID.String()),
		logger.Int64("generation", svc.Generation),
	)
	return dto.FromService(svc), nil
}

func (s *registryAppServiceImpl) Delete(ctx context.Context, name, version string) error {
	if err := s.serviceRepo.Delete(ctx, name, version); err != nil {
		s.metrics.RecordLifecycleOp("delete", "error")
		return err
	}
	if cacheErr := s.cache.InvalidateService(ctx, name, version); cacheErr != nil {
		s.log.Warn(ctx, "failed to invalidate service cache", logger.String("service", name+"@"+version), logger.Error(cacheErr))
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventServiceDeleted).
		ForService(name, version, 0).
		WithDetail("status", string(constants.ServiceStatusRetired)))
	s.metrics.RecordLifecycleOp("delete", "ok")
	s.log.Info(ctx, "service deleted", logger.String("service", name+"@"+version))
	return nil
}

// resolve reads a descriptor through the cache.
func (s *registryAppServiceImpl) resolve(ctx context.Context, name, version string) (*models.Service, error) {
	if svc, err := s.cache.GetService(ctx, name, version); err == nil {
		return svc, nil
	}
	svc, err := s.serviceRepo.FindByNameVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if cacheErr := s.cache.SetService(ctx, svc); cacheErr != nil {
		s.log.Warn(ctx, "failed to prime service cache", logger.String("service", svc.Qualified()), logger.Error(cacheErr))
	}
	return svc, nil
}

func (s *registryAppServiceImpl) publishAudit(ctx context.Context, event *models.AuditEvent) {
	if clientID, ok := ctx.Value(constants.ContextKeyClientID).(string); ok {
		event.WithClient(clientID)
	}
	if err := s.audit.Publish(ctx, event); err != nil {
		s.log.Warn(ctx, "audit publish failed", logger.String("event_type", string(event.Type)), logger.Error(err))
	}
}
