package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/crs/pkg/constants"
)

// AuditEvent records one service lifecycle event for the audit stream.
type AuditEvent struct {
	ID             uuid.UUID                `json:"id"`
	Type           constants.AuditEventType `json:"type"`
	ServiceName    string                   `json:"service_name,omitempty"`
	ServiceVersion string                   `json:"service_version,omitempty"`
	ModelID        string                   `json:"model_id,omitempty"`
	Generation     int64                    `json:"generation,omitempty"`
	ClientID       string                   `json:"client_id,omitempty"`
	Timestamp      time.Time                `json:"timestamp"`
	Detail         map[string]interface{}   `json:"detail,omitempty"`
}

// NewAuditEvent creates a timestamped event of the given type.
func NewAuditEvent(eventType constants.AuditEventType) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// ForService attaches service identity fields.
func (e *AuditEvent) ForService(name, version string, generation int64) *AuditEvent {
	e.ServiceName = name
	e.ServiceVersion = version
	e.Generation = generation
	return e
}

// WithModel attaches the model artifact ID.
func (e *AuditEvent) WithModel(modelID uuid.UUID) *AuditEvent {
	e.ModelID = modelID.String()
	return e
}

// WithClient attaches the acting client ID.
func (e *AuditEvent) WithClient(clientID string) *AuditEvent {
	e.ClientID = clientID
	return e
}

// WithDetail attaches one free-form detail entry.
func (e *AuditEvent) WithDetail(key string, value interface{}) *AuditEvent {
	if e.Detail == nil {
		e.Detail = make(map[string]interface{})
	}
	e.Detail[key] = value
	return e
}
