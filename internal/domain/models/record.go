// Package models defines the domain models for the CRS model serving service.
// This file contains the credit applicant Record consumed by training and scoring.
package models

import (
	"fmt"
)

// Record represents one credit account row: the identifier plus the ten
// feature fields the default model consumes. All fields are required on the
// scoring path; there are no defaults and no null handling.
// Record 代表一条信用账户记录：账户标识符加上违约模型使用的十个特征字段。
// 评分路径上所有字段均为必填，无默认值，不处理空值。
type Record struct {
	// AccountID is the account identifier, passed through to the prediction unchanged.
	// AccountID 是账户标识符，原样透传到预测结果。
	AccountID string `json:"account_id" binding:"required"`

	// Amount6M is the total transaction amount over the last 6 months.
	// Amount6M 是近 6 个月的交易总额。
	Amount6M float64 `json:"amount_6"`

	// PurchaseCount6M is the number of purchases over the last 6 months.
	// PurchaseCount6M 是近 6 个月的购买次数。
	PurchaseCount6M float64 `json:"pur_6"`

	// AvgPurchaseAmount6M is the average purchase amount over the last 6 months.
	// AvgPurchaseAmount6M 是近 6 个月的平均购买金额。
	AvgPurchaseAmount6M float64 `json:"avg_pur_amt_6"`

	// AvgPurchaseInterval6M is the average interval between purchases over the last 6 months.
	// AvgPurchaseInterval6M 是近 6 个月购买行为的平均间隔。
	AvgPurchaseInterval6M float64 `json:"avg_interval_pur_6"`

	// CreditLimit is the account credit limit.
	// CreditLimit 是账户的信用额度。
	CreditLimit float64 `json:"credit_limit"`

	// MaritalStatus is a categorical field (single, married, divorced, widowed).
	// MaritalStatus 是类别型字段（single、married、divorced、widowed）。
	MaritalStatus string `json:"marital_status" binding:"required"`

	// Sex is a categorical field (male, female).
	// Sex 是类别型字段（male、female）。
	Sex string `json:"sex" binding:"required"`

	// Education is a categorical field (primary, secondary, undergraduate, postgraduate).
	// Education 是类别型字段（primary、secondary、undergraduate、postgraduate）。
	Education string `json:"education" binding:"required"`

	// Income is the reported income.
	// Income 是申报收入。
	Income float64 `json:"income"`

	// Age is the account holder's age in years.
	// Age 是账户持有人的年龄（岁）。
	Age float64 `json:"age"`
}

// FeatureNames lists the model feature columns in their fixed order. Training
// and scoring must agree on this order; it is also the dataset column order
// after the target and identifier columns.
var FeatureNames = []string{
	"amount_6",
	"pur_6",
	"avg_pur_amt_6",
	"avg_interval_pur_6",
	"credit_limit",
	"marital_status",
	"sex",
	"education",
	"income",
	"age",
}

// Categorical level encodings. Unknown levels are rejected rather than mapped
// to a default so a typo cannot silently score as a valid category.
var (
	maritalStatusLevels = map[string]float64{
		"single":   0,
		"married":  1,
		"divorced": 2,
		"widowed":  3,
	}
	sexLevels = map[string]float64{
		"male":   0,
		"female": 1,
	}
	educationLevels = map[string]float64{
		"primary":       0,
		"secondary":     1,
		"undergraduate": 2,
		"postgraduate":  3,
	}
)

// EncodeCategorical maps a categorical field value to its ordinal encoding.
// EncodeCategorical 将类别型字段值映射为其序数编码。
func EncodeCategorical(field, value string) (float64, error) {
	var levels map[string]float64
	switch field {
	case "marital_status":
		levels = maritalStatusLevels
	case "sex":
		levels = sexLevels
	case "education":
		levels = educationLevels
	default:
		return 0, fmt.Errorf("field %q is not categorical", field)
	}
	encoded, ok := levels[value]
	if !ok {
		return 0, fmt.Errorf("unknown %s level %q", field, value)
	}
	return encoded, nil
}

// FeatureVector assembles the record's fields into the model's expected
// feature order, encoding categorical fields.
// FeatureVector 按模型期望的特征顺序组装记录字段，并对类别型字段编码。
func (r *Record) FeatureVector() ([]float64, error) {
	marital, err := EncodeCategorical("marital_status", r.MaritalStatus)
	if err != nil {
		return nil, err
	}
	sex, err := EncodeCategorical("sex", r.Sex)
	if err != nil {
		return nil, err
	}
	education, err := EncodeCategorical("education", r.Education)
	if err != nil {
		return nil, err
	}

	return []float64{
		r.Amount6M,
		r.PurchaseCount6M,
		r.AvgPurchaseAmount6M,
		r.AvgPurchaseInterval6M,
		r.CreditLimit,
		marital,
		sex,
		education,
		r.Income,
		r.Age,
	}, nil
}
