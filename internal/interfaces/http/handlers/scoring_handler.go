package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/application/service"
	"github.com/turtacn/crs/pkg/errors"
)

// ScoringHandler exposes the invocation endpoint of published services.
type ScoringHandler struct {
	scoring service.ScoringAppService
}

// NewScoringHandler creates a ScoringHandler.
func NewScoringHandler(scoring service.ScoringAppService) *ScoringHandler {
	return &ScoringHandler{scoring: scoring}
}

// Score handles POST /api/v1/services/:name/:version/score.
func (h *ScoringHandler) Score(c *gin.Context) {
	var req dto.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.scoring.Score(c.Request.Context(), c.Param("name"), c.Param("version"), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}
