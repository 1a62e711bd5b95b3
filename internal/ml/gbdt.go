package ml

import (
	"encoding/json"
	"errors"
	"math"
)

// Params are the GBDT training hyperparameters.
type Params struct {
	Rounds       int
	MaxDepth     int
	LearningRate float64
	MinLeaf      int
}

// DefaultParams returns the baseline hyperparameters.
func DefaultParams() Params {
	return Params{
		Rounds:       50,
		MaxDepth:     3,
		LearningRate: 0.1,
		MinLeaf:      5,
	}
}

func (p *Params) normalize() {
	if p.Rounds <= 0 {
		p.Rounds = 50
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 3
	}
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		p.LearningRate = 0.1
	}
	if p.MinLeaf <= 0 {
		p.MinLeaf = 5
	}
}

// GBDT is a gradient-boosted ensemble of regression trees fit on log-odds
// with logistic loss. Immutable after training.
type GBDT struct {
	Bias         float64          `json:"bias"`
	LearningRate float64          `json:"learning_rate"`
	FeatureCount int              `json:"feature_count"`
	Trees        []regressionTree `json:"trees"`
}

// TrainGBDT fits an ensemble to binary labels (0/1).
func TrainGBDT(features [][]float64, labels []int, params Params) (*GBDT, error) {
	if len(features) == 0 || len(labels) == 0 {
		return nil, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	featureCount := len(features[0])
	for _, row := range features {
		if len(row) != featureCount {
			return nil, errors.New("ragged feature matrix")
		}
	}
	var positives int
	for _, label := range labels {
		if label != 0 && label != 1 {
			return nil, errors.New("labels must be 0 or 1")
		}
		positives += label
	}
	if positives == 0 || positives == len(labels) {
		return nil, errors.New("labels are single-class, nothing to fit")
	}
	params.normalize()

	// Start from the base rate in log-odds space.
	p0 := float64(positives) / float64(len(labels))
	model := &GBDT{
		Bias:         math.Log(p0 / (1 - p0)),
		LearningRate: params.LearningRate,
		FeatureCount: featureCount,
		Trees:        make([]regressionTree, 0, params.Rounds),
	}

	scores := make([]float64, len(labels))
	for i := range scores {
		scores[i] = model.Bias
	}

	gradients := make([]float64, len(labels))
	hessians := make([]float64, len(labels))
	for round := 0; round < params.Rounds; round++ {
		for i := range labels {
			p := sigmoid(scores[i])
			gradients[i] = float64(labels[i]) - p
			hessians[i] = p * (1 - p)
		}

		tree := fitTree(features, gradients, hessians, params.MaxDepth, params.MinLeaf)
		model.Trees = append(model.Trees, tree)

		for i := range scores {
			scores[i] += params.LearningRate * tree.predict(features[i])
		}
	}

	return model, nil
}

// PredictProb returns the probability of the positive (default) class.
func (g *GBDT) PredictProb(features []float64) (float64, error) {
	if len(g.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	if len(features) != g.FeatureCount {
		return 0, errors.New("feature vector length mismatch")
	}
	score := g.Bias
	for i := range g.Trees {
		score += g.LearningRate * g.Trees[i].predict(features)
	}
	return sigmoid(score), nil
}

// Predict returns the label and the positive-class probability. The label
// threshold (0.5 on the sigmoid output) belongs to the model, not its callers.
func (g *GBDT) Predict(features []float64) (int, float64, error) {
	prob, err := g.PredictProb(features)
	if err != nil {
		return 0, 0, err
	}
	if prob >= 0.5 {
		return 1, prob, nil
	}
	return 0, prob, nil
}

// Encode serializes the ensemble to its JSON artifact payload.
func (g *GBDT) Encode() ([]byte, error) {
	if len(g.Trees) == 0 {
		return nil, errors.New("model not trained")
	}
	return json.Marshal(g)
}

// DecodeGBDT deserializes an artifact payload back into an ensemble.
func DecodeGBDT(payload []byte) (*GBDT, error) {
	var model GBDT
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, err
	}
	if len(model.Trees) == 0 || model.FeatureCount <= 0 {
		return nil, errors.New("artifact payload is not a trained ensemble")
	}
	return &model, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
