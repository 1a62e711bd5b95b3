package dto

import (
	"time"

	"github.com/turtacn/crs/internal/domain/models"
)

// PublishServiceRequest 发布评分服务请求 DTO
type PublishServiceRequest struct {
	// Name must not contain the characters used to build binding keys.
	Name        string `json:"name" validate:"required,min=1,max=128,excludesall=@#/"`
	Version     string `json:"version" validate:"required,semver"`
	ModelID     string `json:"model_id" validate:"required,uuid"`
	Description string `json:"description" validate:"omitempty,max=512"`
}

// UpdateModelRequest 更换服务绑定模型请求 DTO。调用方必须携带它最近读到的
// generation；若绑定已被并发修改则返回冲突。
type UpdateModelRequest struct {
	ModelID            string `json:"model_id" validate:"required,uuid"`
	ExpectedGeneration int64  `json:"expected_generation" validate:"required,min=1"`
}

// ListServicesRequest 服务目录分页查询 DTO
type ListServicesRequest struct {
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=500"`
	Name     string `form:"name" validate:"omitempty,max=128"`
}

// ServiceResponse 服务描述符响应 DTO
type ServiceResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Version     string               `json:"version"`
	ModelID     string               `json:"model_id"`
	Generation  int64                `json:"generation"`
	Status      string               `json:"status"`
	Description string               `json:"description,omitempty"`
	Schema      models.ServiceSchema `json:"schema"`
	Endpoint    string               `json:"endpoint"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ListServicesResponse 服务目录响应 DTO
type ListServicesResponse struct {
	Services   []*ServiceResponse  `json:"services"`
	Pagination *PaginationResponse `json:"pagination"`
}

// FromService maps a domain descriptor to its response shape.
func FromService(svc *models.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:          svc.ID.String(),
		Name:        svc.Name,
		Version:     svc.Version,
		ModelID:     svc.ModelID.String(),
		Generation:  svc.Generation,
		Status:      string(svc.Status),
		Description: svc.Description,
		Schema:      svc.Schema,
		Endpoint:    "/api/v1/services/" + svc.Name + "/" + svc.Version + "/score",
		CreatedAt:   svc.CreatedAt,
		UpdatedAt:   svc.UpdatedAt,
	}
}
