package models

// Prediction is the fixed three-field scoring response: the account identifier
// passed through from the input, the predicted default label, and the
// predicted probability of the positive (default) class.
// Prediction 是固定的三字段评分响应：从输入透传的账户标识符、预测的违约标签，
// 以及正类（违约）的预测概率。
type Prediction struct {
	AccountID   string  `json:"account_id"`
	ScoredLabel int     `json:"scored_label"`
	ScoredProb  float64 `json:"scored_prob"`
}
