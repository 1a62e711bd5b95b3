package dto

import (
	"time"

	"github.com/turtacn/crs/internal/domain/models"
)

// TrainModelRequest 模型训练请求 DTO。未填写的超参数取配置默认值。
type TrainModelRequest struct {
	DatasetPath     string  `json:"dataset_path" validate:"required,min=1"`
	Rounds          int     `json:"rounds" validate:"omitempty,min=1,max=1000"`
	MaxDepth        int     `json:"max_depth" validate:"omitempty,min=1,max=16"`
	LearningRate    float64 `json:"learning_rate" validate:"omitempty,gt=0,lte=1"`
	HoldoutFraction float64 `json:"holdout_fraction" validate:"omitempty,gte=0,lt=1"`
	Seed            int64   `json:"seed"`
}

// TrainModelResponse 模型训练响应 DTO
type TrainModelResponse struct {
	ModelID     string                 `json:"model_id"`
	Algorithm   string                 `json:"algorithm"`
	Checksum    string                 `json:"checksum"`
	Metrics     models.TrainingMetrics `json:"metrics"`
	TrainedRows int                    `json:"trained_rows"`
	CreatedAt   time.Time              `json:"created_at"`
}

// PruneModelsRequest 孤儿模型清理请求 DTO。保留窗口内或仍被服务引用的制品不会被删除。
type PruneModelsRequest struct {
	KeepDays int `json:"keep_days" validate:"required,min=1,max=3650"`
}

// PruneModelsResponse 孤儿模型清理响应 DTO
type PruneModelsResponse struct {
	Removed  int64 `json:"removed"`
	KeepDays int   `json:"keep_days"`
}

// FromModelArtifact maps an artifact to its training response shape.
func FromModelArtifact(m *models.ModelArtifact) *TrainModelResponse {
	return &TrainModelResponse{
		ModelID:     m.ID.String(),
		Algorithm:   string(m.Algorithm),
		Checksum:    m.Checksum,
		Metrics:     m.Metrics,
		TrainedRows: m.TrainedRows,
		CreatedAt:   m.CreatedAt,
	}
}
