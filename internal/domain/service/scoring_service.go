// Package service contains the domain services of the CRS model serving
// service. The scoring adapter here is the one piece of locally authored
// prediction logic; everything around it is plumbing.
package service

import (
	"fmt"

	"github.com/turtacn/crs/internal/domain/models"
)

// ModelHandle is the adapter's view of a trained model: one feature vector
// in, a label and a positive-class probability out. The production
// implementation is the GBDT ensemble; tests substitute a stub.
type ModelHandle interface {
	Predict(features []float64) (label int, prob float64, err error)
}

// ScoringAdapter maps one fully populated Record into the model's expected
// feature schema, invokes the model, and reshapes the raw output into the
// fixed three-field Prediction, re-attaching the original account identifier.
// It is a pure transform over its arguments: no I/O, no shared state.
// ScoringAdapter 将一条完整填充的 Record 映射为模型期望的特征格式，调用模型，
// 并将原始输出重塑为固定的三字段 Prediction，同时带回原始账户标识符。
// 它是对参数的纯变换：无 I/O，无共享状态。
type ScoringAdapter struct{}

// NewScoringAdapter creates the adapter.
func NewScoringAdapter() *ScoringAdapter {
	return &ScoringAdapter{}
}

// Score produces exactly one Prediction for one Record, as long as the model
// call succeeds. The account identifier is an identity passthrough and the
// label threshold belongs to the model.
func (a *ScoringAdapter) Score(record *models.Record, model ModelHandle) (*models.Prediction, error) {
	features, err := record.FeatureVector()
	if err != nil {
		return nil, fmt.Errorf("assemble features: %w", err)
	}

	label, prob, err := model.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}

	return &models.Prediction{
		AccountID:   record.AccountID,
		ScoredLabel: label,
		ScoredProb:  prob,
	}, nil
}
