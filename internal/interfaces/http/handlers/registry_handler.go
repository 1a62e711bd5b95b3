// Package handlers contains the gin handlers of the serving API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/application/service"
	"github.com/turtacn/crs/pkg/errors"
)

// RegistryHandler exposes the service lifecycle endpoints.
type RegistryHandler struct {
	registry service.RegistryAppService
	training service.TrainingAppService
}

// NewRegistryHandler creates a RegistryHandler.
func NewRegistryHandler(registry service.RegistryAppService, training service.TrainingAppService) *RegistryHandler {
	return &RegistryHandler{registry: registry, training: training}
}

// Publish handles POST /api/v1/services.
func (h *RegistryHandler) Publish(c *gin.Context) {
	var req dto.PublishServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.registry.Publish(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, result)
}

// List handles GET /api/v1/services.
func (h *RegistryHandler) List(c *gin.Context) {
	var req dto.ListServicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.registry.List(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// Fetch handles GET /api/v1/services/:name/:version.
func (h *RegistryHandler) Fetch(c *gin.Context) {
	result, err := h.registry.Fetch(c.Request.Context(), c.Param("name"), c.Param("version"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// Swagger handles GET /api/v1/services/:name/:version/swagger.json. The
// descriptor is returned raw, not wrapped in the response envelope, so
// external tools can consume it directly.
func (h *RegistryHandler) Swagger(c *gin.Context) {
	doc, err := h.registry.Swagger(c.Request.Context(), c.Param("name"), c.Param("version"))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", doc)
}

// UpdateModel handles PUT /api/v1/services/:name/:version/model.
func (h *RegistryHandler) UpdateModel(c *gin.Context) {
	var req dto.UpdateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.registry.UpdateModel(c.Request.Context(), c.Param("name"), c.Param("version"), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// Delete handles DELETE /api/v1/services/:name/:version.
func (h *RegistryHandler) Delete(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("name"), c.Param("version")); err != nil {
		dto.SendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Train handles POST /api/v1/models/train.
func (h *RegistryHandler) Train(c *gin.Context) {
	var req dto.TrainModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.training.Train(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusCreated, result)
}

// Prune handles POST /api/v1/models/prune.
func (h *RegistryHandler) Prune(c *gin.Context) {
	var req dto.PruneModelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.training.Prune(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}
