package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/crs/pkg/constants"
)

// Service is the descriptor of a published scoring endpoint: a (name, version)
// identity bound to a model artifact. The binding is mutable by design — an
// Update replaces the bound model while keeping the same callable identity —
// so every rebind bumps Generation, and invocation paths key their caches by
// it. Update is compare-and-swap on the expected generation.
// Service 是已发布评分端点的描述符：绑定到模型工件的 (name, version) 标识。
// 绑定是有意可变的 —— Update 在保持可调用标识不变的前提下替换绑定的模型 ——
// 因此每次重新绑定都会递增 Generation，调用路径以它作为缓存键。
// Update 以期望的 generation 做比较并交换。
type Service struct {
	// ID is the internal unique identifier of the descriptor row.
	// ID 是描述符记录的内部唯一标识符。
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	// Name is the service name; (Name, Version) is unique.
	// Name 是服务名称；(Name, Version) 唯一。
	Name string `json:"name" gorm:"size:128;not null;uniqueIndex:idx_services_name_version"`

	// Version is the semantic version string of the service.
	// Version 是服务的语义化版本字符串。
	Version string `json:"version" gorm:"size:64;not null;uniqueIndex:idx_services_name_version"`

	// ModelID references the currently bound model artifact.
	// ModelID 引用当前绑定的模型工件。
	ModelID uuid.UUID `json:"model_id" gorm:"type:uuid;not null"`

	// Generation increases by one on every model rebind. Never reset.
	// Generation 在每次模型重新绑定时加一，永不重置。
	Generation int64 `json:"generation" gorm:"not null;default:1"`

	// Schema is the statically declared input/output contract.
	// Schema 是静态声明的输入/输出契约。
	Schema ServiceSchema `json:"schema" gorm:"serializer:json"`

	// Status is the lifecycle status; deleted services are hard-removed, so
	// persisted rows are always active.
	// Status 是生命周期状态；删除即硬删除，持久化的记录始终为 active。
	Status constants.ServiceStatus `json:"status" gorm:"size:16;not null"`

	// Description is an optional free-text summary for catalog listings.
	// Description 是可选的自由文本摘要，用于目录列表。
	Description string `json:"description,omitempty" gorm:"size:512"`

	// CreatedAt is when the service was first published.
	// CreatedAt 是服务首次发布的时间。
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the binding last changed.
	// UpdatedAt 是绑定最近一次变更的时间。
	UpdatedAt time.Time `json:"updated_at"`
}

// NewService creates an active generation-1 descriptor.
func NewService(name, version string, modelID uuid.UUID, schema ServiceSchema, description string) *Service {
	now := time.Now().UTC()
	return &Service{
		ID:          uuid.New(),
		Name:        name,
		Version:     version,
		ModelID:     modelID,
		Generation:  1,
		Schema:      schema,
		Status:      constants.ServiceStatusActive,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Qualified returns the "name@version" identity used in logs and cache keys.
func (s *Service) Qualified() string {
	return fmt.Sprintf("%s@%s", s.Name, s.Version)
}

// BindingKey identifies one concrete (service, generation) binding; model
// caches use it so a rebind is a new key and stale entries die by TTL.
func (s *Service) BindingKey() string {
	return fmt.Sprintf("%s@%s#%d", s.Name, s.Version, s.Generation)
}

// TableName maps the descriptor to its table.
func (Service) TableName() string { return "services" }
