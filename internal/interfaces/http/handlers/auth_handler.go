package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/application/service"
	"github.com/turtacn/crs/pkg/errors"
)

// AuthHandler exposes token issuance.
type AuthHandler struct {
	auth service.AuthAppService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth service.AuthAppService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// IssueToken handles POST /api/v1/auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	result, err := h.auth.IssueToken(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}
