package models

// FieldType is the primitive type tag used in service interface schemas.
type FieldType string

const (
	// FieldTypeCharacter maps to a JSON string.
	FieldTypeCharacter FieldType = "character"

	// FieldTypeNumeric maps to a JSON number (float64).
	FieldTypeNumeric FieldType = "numeric"
)

// FieldSpec declares one named, typed field of a service interface.
type FieldSpec struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// ServiceSchema is the statically declared input/output contract of a scoring
// service. The interface descriptor is generated from it; there is no runtime
// type dictionary.
type ServiceSchema struct {
	Input  []FieldSpec `json:"input"`
	Output []FieldSpec `json:"output"`
}

// DefaultCreditSchema returns the schema of the credit default scoring
// service: the full Record on input, the three-field Prediction on output.
func DefaultCreditSchema() ServiceSchema {
	return ServiceSchema{
		Input: []FieldSpec{
			{Name: "account_id", Type: FieldTypeCharacter},
			{Name: "amount_6", Type: FieldTypeNumeric},
			{Name: "pur_6", Type: FieldTypeNumeric},
			{Name: "avg_pur_amt_6", Type: FieldTypeNumeric},
			{Name: "avg_interval_pur_6", Type: FieldTypeNumeric},
			{Name: "credit_limit", Type: FieldTypeNumeric},
			{Name: "marital_status", Type: FieldTypeCharacter},
			{Name: "sex", Type: FieldTypeCharacter},
			{Name: "education", Type: FieldTypeCharacter},
			{Name: "income", Type: FieldTypeNumeric},
			{Name: "age", Type: FieldTypeNumeric},
		},
		Output: []FieldSpec{
			{Name: "account_id", Type: FieldTypeCharacter},
			{Name: "scored_label", Type: FieldTypeNumeric},
			{Name: "scored_prob", Type: FieldTypeNumeric},
		},
	}
}

// jsonType maps a schema type tag to its swagger primitive type.
func (t FieldType) jsonType() string {
	if t == FieldTypeNumeric {
		return "number"
	}
	return "string"
}
