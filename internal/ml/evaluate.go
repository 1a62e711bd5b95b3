package ml

import "sort"

// Evaluation summarizes model quality on a holdout set.
type Evaluation struct {
	Accuracy     float64
	AUC          float64
	PositiveRate float64
	Rows         int
}

// Evaluate scores every holdout row and computes accuracy, rank-based AUC,
// and the predicted positive rate. An empty holdout yields a zero Evaluation.
func Evaluate(model *GBDT, holdout *Dataset) (Evaluation, error) {
	if holdout == nil || holdout.Len() == 0 {
		return Evaluation{}, nil
	}

	probs := make([]float64, holdout.Len())
	var correct, predictedPositive int
	for i, features := range holdout.Features {
		label, prob, err := model.Predict(features)
		if err != nil {
			return Evaluation{}, err
		}
		probs[i] = prob
		if label == holdout.Labels[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
	}

	return Evaluation{
		Accuracy:     float64(correct) / float64(holdout.Len()),
		AUC:          rankAUC(probs, holdout.Labels),
		PositiveRate: float64(predictedPositive) / float64(holdout.Len()),
		Rows:         holdout.Len(),
	}, nil
}

// rankAUC computes AUC via the Mann-Whitney U statistic with midrank ties.
func rankAUC(probs []float64, labels []int) float64 {
	type scored struct {
		prob  float64
		label int
	}
	rows := make([]scored, len(probs))
	for i := range probs {
		rows[i] = scored{prob: probs[i], label: labels[i]}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].prob < rows[j].prob })

	var positives, negatives int
	ranks := make([]float64, len(rows))
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && rows[j].prob == rows[i].prob {
			j++
		}
		midrank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[k] = midrank
		}
		i = j
	}

	var positiveRankSum float64
	for i, row := range rows {
		if row.label == 1 {
			positives++
			positiveRankSum += ranks[i]
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0
	}

	u := positiveRankSum - float64(positives*(positives+1))/2
	return u / float64(positives*negatives)
}
