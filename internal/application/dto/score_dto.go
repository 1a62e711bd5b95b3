package dto

import (
	"github.com/turtacn/crs/internal/domain/models"
)

// ScoreRequest 评分请求 DTO：一条待评分的信用账户记录。
type ScoreRequest struct {
	AccountID             string  `json:"account_id" validate:"required,min=1,max=128"`
	Amount6M              float64 `json:"amount_6"`
	PurchaseCount6M       float64 `json:"pur_6"`
	AvgPurchaseAmount6M   float64 `json:"avg_pur_amt_6"`
	AvgPurchaseInterval6M float64 `json:"avg_interval_pur_6"`
	CreditLimit           float64 `json:"credit_limit"`
	MaritalStatus         string  `json:"marital_status" validate:"required,oneof=single married divorced widowed"`
	Sex                   string  `json:"sex" validate:"required,oneof=male female"`
	Education             string  `json:"education" validate:"required,oneof=primary secondary undergraduate postgraduate"`
	Income                float64 `json:"income"`
	Age                   float64 `json:"age" validate:"min=0,max=150"`
}

// ToRecord converts the request to the domain record.
func (r *ScoreRequest) ToRecord() *models.Record {
	return &models.Record{
		AccountID:             r.AccountID,
		Amount6M:              r.Amount6M,
		PurchaseCount6M:       r.PurchaseCount6M,
		AvgPurchaseAmount6M:   r.AvgPurchaseAmount6M,
		AvgPurchaseInterval6M: r.AvgPurchaseInterval6M,
		CreditLimit:           r.CreditLimit,
		MaritalStatus:         r.MaritalStatus,
		Sex:                   r.Sex,
		Education:             r.Education,
		Income:                r.Income,
		Age:                   r.Age,
	}
}

// ScoreResponse 评分响应 DTO：账户标识加预测标签与违约概率。
type ScoreResponse struct {
	AccountID   string  `json:"account_id"`
	ScoredLabel int     `json:"scored_label"`
	ScoredProb  float64 `json:"scored_prob"`
}

// FromPrediction maps a domain prediction to its response shape.
func FromPrediction(p *models.Prediction) *ScoreResponse {
	return &ScoreResponse{
		AccountID:   p.AccountID,
		ScoredLabel: p.ScoredLabel,
		ScoredProb:  p.ScoredProb,
	}
}
