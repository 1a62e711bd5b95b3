package ml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/crs/internal/domain/models"
)

const datasetHeader = "account_id,default,amount_6,pur_6,avg_pur_amt_6,avg_interval_pur_6,credit_limit,marital_status,sex,education,income,age"

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleRow(accountID string, label int) string {
	return fmt.Sprintf("%s,%d,1200.5,14,85.7,2.1,5000,married,female,undergraduate,38000,41", accountID, label)
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, datasetHeader, sampleRow("a_1", 0), sampleRow("a_2", 1))

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"a_1", "a_2"}, ds.AccountIDs)
	assert.Equal(t, []int{0, 1}, ds.Labels)
	require.Len(t, ds.Features[0], len(models.FeatureNames))

	// Categoricals are ordinal-encoded into the vector.
	married, err := models.EncodeCategorical("marital_status", "married")
	require.NoError(t, err)
	idx := -1
	for i, name := range models.FeatureNames {
		if name == "marital_status" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.InDelta(t, married, ds.Features[0][idx], 1e-9)
}

func TestLoadCSV_Failures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
		assert.Error(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		header := strings.Replace(datasetHeader, ",age", "", 1)
		row := strings.TrimSuffix(sampleRow("a_1", 0), ",41")
		_, err := LoadCSV(writeCSV(t, header, row))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "age")
	})

	t.Run("non-binary target", func(t *testing.T) {
		_, err := LoadCSV(writeCSV(t, datasetHeader, sampleRow("a_1", 7)))
		assert.Error(t, err)
	})

	t.Run("non-numeric feature", func(t *testing.T) {
		row := strings.Replace(sampleRow("a_1", 0), "38000", "lots", 1)
		_, err := LoadCSV(writeCSV(t, datasetHeader, row))
		assert.Error(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		row := strings.Replace(sampleRow("a_1", 0), "married", "complicated", 1)
		_, err := LoadCSV(writeCSV(t, datasetHeader, row))
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := LoadCSV(writeCSV(t, datasetHeader))
		assert.Error(t, err)
	})
}

func TestDataset_Split(t *testing.T) {
	var lines []string
	lines = append(lines, datasetHeader)
	for i := 0; i < 10; i++ {
		lines = append(lines, sampleRow(fmt.Sprintf("a_%d", i), i%2))
	}
	ds, err := LoadCSV(writeCSV(t, lines...))
	require.NoError(t, err)

	train, holdout := ds.Split(0.3, 42)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, holdout.Len())

	// Same seed, same partition.
	train2, holdout2 := ds.Split(0.3, 42)
	assert.Equal(t, train.AccountIDs, train2.AccountIDs)
	assert.Equal(t, holdout.AccountIDs, holdout2.AccountIDs)

	// Fraction zero keeps everything in train.
	all, none := ds.Split(0, 42)
	assert.Equal(t, 10, all.Len())
	assert.Equal(t, 0, none.Len())
}

func TestEvaluate(t *testing.T) {
	features, labels := separableData(300, 5)
	model, err := TrainGBDT(features, labels, Params{Rounds: 20, MaxDepth: 3, LearningRate: 0.3, MinLeaf: 5})
	require.NoError(t, err)

	holdoutFeatures, holdoutLabels := separableData(100, 99)
	holdout := &Dataset{Features: holdoutFeatures, Labels: holdoutLabels}
	for i := range holdoutLabels {
		holdout.AccountIDs = append(holdout.AccountIDs, fmt.Sprintf("h_%d", i))
	}

	eval, err := Evaluate(model, holdout)
	require.NoError(t, err)
	assert.Equal(t, 100, eval.Rows)
	assert.Greater(t, eval.Accuracy, 0.9)
	assert.Greater(t, eval.AUC, 0.9)
	assert.Greater(t, eval.PositiveRate, 0.0)

	empty, err := Evaluate(model, &Dataset{})
	require.NoError(t, err)
	assert.Zero(t, empty.Rows)
	assert.Zero(t, empty.AUC)
}
