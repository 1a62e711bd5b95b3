package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableData builds a two-feature dataset where the first feature alone
// decides the label, so a few boosting rounds recover it exactly.
func separableData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()
		features[i] = []float64{x, rng.Float64()}
		if x > 0.5 {
			labels[i] = 1
		}
	}
	return features, labels
}

func TestTrainGBDT_LearnsSeparableData(t *testing.T) {
	features, labels := separableData(400, 7)

	model, err := TrainGBDT(features, labels, Params{Rounds: 20, MaxDepth: 3, LearningRate: 0.3, MinLeaf: 5})
	require.NoError(t, err)
	require.Len(t, model.Trees, 20)
	assert.Equal(t, 2, model.FeatureCount)

	label, prob, err := model.Predict([]float64{0.9, 0.1})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
	assert.Greater(t, prob, 0.5)

	label, prob, err = model.Predict([]float64{0.1, 0.9})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
	assert.Less(t, prob, 0.5)
}

func TestTrainGBDT_InputValidation(t *testing.T) {
	valid := [][]float64{{1, 0}, {0, 1}}

	cases := []struct {
		name     string
		features [][]float64
		labels   []int
	}{
		{"empty", nil, nil},
		{"size mismatch", valid, []int{0}},
		{"ragged matrix", [][]float64{{1, 0}, {1}}, []int{0, 1}},
		{"non-binary labels", valid, []int{0, 2}},
		{"single class", valid, []int{1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TrainGBDT(tc.features, tc.labels, DefaultParams())
			assert.Error(t, err)
		})
	}
}

func TestTrainGBDT_NormalizesParams(t *testing.T) {
	features, labels := separableData(100, 3)

	// Out-of-range hyperparameters fall back to defaults instead of failing.
	model, err := TrainGBDT(features, labels, Params{Rounds: -1, MaxDepth: 0, LearningRate: 9, MinLeaf: -5})
	require.NoError(t, err)
	assert.Len(t, model.Trees, 50)
	assert.InDelta(t, 0.1, model.LearningRate, 1e-9)
}

func TestGBDT_PredictRejectsBadVectors(t *testing.T) {
	features, labels := separableData(100, 1)
	model, err := TrainGBDT(features, labels, Params{Rounds: 5, MaxDepth: 2, LearningRate: 0.3, MinLeaf: 5})
	require.NoError(t, err)

	_, _, err = model.Predict([]float64{1, 2, 3})
	assert.Error(t, err)

	empty := &GBDT{}
	_, _, err = empty.Predict([]float64{1, 2})
	assert.Error(t, err)
}

func TestGBDT_EncodeDecodeRoundTrip(t *testing.T) {
	features, labels := separableData(200, 11)
	model, err := TrainGBDT(features, labels, Params{Rounds: 10, MaxDepth: 3, LearningRate: 0.3, MinLeaf: 5})
	require.NoError(t, err)

	payload, err := model.Encode()
	require.NoError(t, err)

	decoded, err := DecodeGBDT(payload)
	require.NoError(t, err)

	for _, vector := range [][]float64{{0.9, 0.5}, {0.2, 0.5}, {0.51, 0.0}} {
		wantLabel, wantProb, err := model.Predict(vector)
		require.NoError(t, err)
		gotLabel, gotProb, err := decoded.Predict(vector)
		require.NoError(t, err)
		assert.Equal(t, wantLabel, gotLabel)
		assert.InDelta(t, wantProb, gotProb, 1e-12)
	}
}

func TestDecodeGBDT_RejectsBadPayloads(t *testing.T) {
	_, err := DecodeGBDT([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeGBDT([]byte(`{"bias":0,"trees":[]}`))
	assert.Error(t, err)

	empty := &GBDT{}
	_, err = empty.Encode()
	assert.Error(t, err)
}
