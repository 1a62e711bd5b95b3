package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/turtacn/crs/internal/domain/models"
)

// Dataset is a fully in-memory training table: one label and one feature
// vector per account row.
type Dataset struct {
	AccountIDs []string
	Features   [][]float64
	Labels     []int
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Labels) }

// targetColumn and idColumn name the non-feature columns of the dataset file.
const (
	targetColumn = "default"
	idColumn     = "account_id"
)

// LoadCSV reads a delimited dataset file with a header row fully into memory.
// The header must contain the target flag, the account identifier, and every
// feature column; extra columns are ignored. Categorical features are
// ordinal-encoded, malformed rows abort the load.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	required := append([]string{targetColumn, idColumn}, models.FeatureNames...)
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", name)
		}
	}

	ds := &Dataset{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		line++

		label, err := strconv.Atoi(row[columns[targetColumn]])
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("row %d: target %q is not a 0/1 flag", line, row[columns[targetColumn]])
		}

		vector := make([]float64, 0, len(models.FeatureNames))
		for _, name := range models.FeatureNames {
			raw := row[columns[name]]
			value, err := parseFeature(name, raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			vector = append(vector, value)
		}

		ds.AccountIDs = append(ds.AccountIDs, row[columns[idColumn]])
		ds.Features = append(ds.Features, vector)
		ds.Labels = append(ds.Labels, label)
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}
	return ds, nil
}

func parseFeature(name, raw string) (float64, error) {
	switch name {
	case "marital_status", "sex", "education":
		return models.EncodeCategorical(name, raw)
	default:
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %q is not numeric", name, raw)
		}
		return value, nil
	}
}

// Split partitions the dataset into train and holdout parts after a
// deterministic seeded shuffle. holdoutFraction 0 returns the whole set as
// train and an empty holdout.
func (d *Dataset) Split(holdoutFraction float64, seed int64) (train, holdout *Dataset) {
	n := d.Len()
	order := rand.New(rand.NewSource(seed)).Perm(n)

	holdoutSize := int(float64(n) * holdoutFraction)
	train = &Dataset{}
	holdout = &Dataset{}

	for i, idx := range order {
		dst := train
		if i < holdoutSize {
			dst = holdout
		}
		dst.AccountIDs = append(dst.AccountIDs, d.AccountIDs[idx])
		dst.Features = append(dst.Features, d.Features[idx])
		dst.Labels = append(dst.Labels, d.Labels[idx])
	}
	return train, holdout
}
