package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/crs/pkg/constants"
)

// TrainingMetrics summarizes a model's holdout evaluation.
type TrainingMetrics struct {
	Accuracy     float64 `json:"accuracy"`
	AUC          float64 `json:"auc"`
	PositiveRate float64 `json:"positive_rate"`
	HoldoutRows  int     `json:"holdout_rows"`
}

// ModelArtifact is the opaque trained-model artifact produced by a training
// run. It is immutable once created; services reference it by ID and updates
// rebind a service to a different artifact rather than mutating one.
// ModelArtifact 是训练运行产出的不透明模型工件。创建后不可变；
// 服务通过 ID 引用它，更新操作将服务重新绑定到另一个工件，而不是修改工件本身。
type ModelArtifact struct {
	// ID is the unique artifact identifier.
	// ID 是工件的唯一标识符。
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	// Algorithm tags the training algorithm that produced the artifact.
	// Algorithm 标记产出该工件的训练算法。
	Algorithm constants.ModelAlgorithm `json:"algorithm" gorm:"size:32;not null"`

	// FeatureNames records the feature column order the ensemble was fit on.
	// FeatureNames 记录集成模型训练时使用的特征列顺序。
	FeatureNames []string `json:"feature_names" gorm:"serializer:json"`

	// Payload is the JSON-encoded ensemble.
	// Payload 是 JSON 编码的集成模型。
	Payload []byte `json:"-" gorm:"not null"`

	// Checksum is the hex SHA-256 of Payload, verified on every load.
	// Checksum 是 Payload 的十六进制 SHA-256，每次加载时校验。
	Checksum string `json:"checksum" gorm:"size:64;not null"`

	// Metrics holds the holdout evaluation of the training run.
	// Metrics 保存训练运行的留出集评估结果。
	Metrics TrainingMetrics `json:"metrics" gorm:"serializer:json"`

	// TrainedRows is the number of rows the model was fit on.
	// TrainedRows 是模型拟合使用的样本行数。
	TrainedRows int `json:"trained_rows"`

	// CreatedAt is when the training run completed.
	// CreatedAt 是训练运行完成的时间。
	CreatedAt time.Time `json:"created_at"`
}

// NewModelArtifact creates an artifact for an encoded ensemble, computing its
// checksum.
func NewModelArtifact(algorithm constants.ModelAlgorithm, payload []byte, featureNames []string, metrics TrainingMetrics, trainedRows int) *ModelArtifact {
	return &ModelArtifact{
		ID:           uuid.New(),
		Algorithm:    algorithm,
		FeatureNames: append([]string(nil), featureNames...),
		Payload:      payload,
		Checksum:     ChecksumOf(payload),
		Metrics:      metrics,
		TrainedRows:  trainedRows,
		CreatedAt:    time.Now().UTC(),
	}
}

// ChecksumOf returns the hex SHA-256 of a payload.
func ChecksumOf(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether the payload still matches the recorded
// checksum.
func (m *ModelArtifact) VerifyChecksum() bool {
	return ChecksumOf(m.Payload) == m.Checksum
}

// TableName maps the artifact to its table.
func (ModelArtifact) TableName() string { return "model_artifacts" }
