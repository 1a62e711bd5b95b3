// Package dto holds the request/response shapes of the HTTP API.
package dto

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// PaginationResponse 分页响应元数据
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 从 CRSError 创建失败响应
func ErrorResponse(err errors.CRSError, requestID string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Code:        string(err.Code()),
			Message:     err.Error(),
			Description: err.Description(),
			Details:     err.Metadata(),
		},
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess writes a success envelope with the request's correlation ID.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, requestID(c)))
}

// SendError maps any error to its HTTP status and writes a failure envelope.
// Unstructured errors are masked as server errors.
func SendError(c *gin.Context, err error) {
	crsErr, ok := errors.AsCRSError(err)
	if !ok {
		crsErr = errors.ErrServerError("an unexpected error occurred").WithCause(err)
	}
	c.JSON(crsErr.HTTPStatus(), ErrorResponse(crsErr, requestID(c)))
}

func requestID(c *gin.Context) string {
	if id, exists := c.Get(string(constants.ContextKeyRequestID)); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// NewPagination computes pagination metadata from a total row count.
func NewPagination(page, pageSize int, total int64) *PaginationResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &PaginationResponse{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
