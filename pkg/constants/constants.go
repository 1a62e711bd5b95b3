// Package constants defines shared constants for the CRS model serving service.
package constants

import "time"

// ServiceName is the canonical service name used in logs, metrics, and traces.
const ServiceName = "crs-model-serving"

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode represents a machine-readable error code returned in API responses.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a malformed or incomplete request.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeUnauthorized indicates missing or invalid client credentials.
	ErrCodeUnauthorized ErrorCode = "unauthorized"

	// ErrCodeNotFound indicates the requested resource does not exist.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeConflict indicates the operation conflicts with existing state.
	ErrCodeConflict ErrorCode = "conflict"

	// ErrCodeSchemaMismatch indicates a scoring payload that does not match the
	// declared input schema of the target service.
	ErrCodeSchemaMismatch ErrorCode = "schema_mismatch"

	// ErrCodeTrainingFailed indicates model training could not complete.
	ErrCodeTrainingFailed ErrorCode = "training_failed"

	// ErrCodeServerError indicates an unexpected internal failure.
	ErrCodeServerError ErrorCode = "server_error"

	// ErrCodeUnavailable indicates a dependency is temporarily unreachable.
	ErrCodeUnavailable ErrorCode = "temporarily_unavailable"
)

// ================================================================================
// Service Lifecycle
// ================================================================================

// ServiceStatus represents the lifecycle status of a published scoring service.
type ServiceStatus string

const (
	// ServiceStatusActive indicates the service is published and invocable.
	ServiceStatusActive ServiceStatus = "active"

	// ServiceStatusRetired indicates the service has been deleted; kept for
	// audit payloads only, never persisted.
	ServiceStatusRetired ServiceStatus = "retired"
)

// ModelAlgorithm tags the training algorithm that produced a model artifact.
type ModelAlgorithm string

const (
	// AlgorithmGBDT is the gradient-boosted decision tree ensemble.
	AlgorithmGBDT ModelAlgorithm = "gbdt"
)

// ================================================================================
// Audit Events
// ================================================================================

// AuditEventType classifies service lifecycle events published to Kafka.
type AuditEventType string

const (
	AuditEventModelTrained     AuditEventType = "model_trained"
	AuditEventModelsPruned     AuditEventType = "models_pruned"
	AuditEventServicePublished AuditEventType = "service_published"
	AuditEventServiceUpdated   AuditEventType = "service_updated"
	AuditEventServiceDeleted   AuditEventType = "service_deleted"
	AuditEventScoreRequested   AuditEventType = "score_requested"
	AuditEventTokenIssued      AuditEventType = "token_issued"
	AuditEventAuthFailed       AuditEventType = "authentication_failed"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context values.
type ContextKey string

const (
	// ContextKeyRequestID is the key for the per-request correlation ID.
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for the distributed trace ID.
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyClientID is the key for the authenticated client ID.
	ContextKeyClientID ContextKey = "client_id"
)

// ================================================================================
// Log Levels
// ================================================================================

// LogLevel represents the severity level of log messages.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// ================================================================================
// Cache Keys and TTLs
// ================================================================================

const (
	// CacheKeyServicePrefix prefixes redis keys holding service descriptors.
	CacheKeyServicePrefix = "crs:service:"

	// CacheKeySwaggerPrefix prefixes redis keys holding rendered swagger docs.
	CacheKeySwaggerPrefix = "crs:swagger:"

	// DescriptorCacheTTL bounds staleness of cached descriptors; writes
	// invalidate eagerly, the TTL is a backstop.
	DescriptorCacheTTL = 10 * time.Minute

	// EnsembleCacheTTL bounds how long a decoded model ensemble stays in the
	// in-process cache without being touched.
	EnsembleCacheTTL = 30 * time.Minute
)

// ================================================================================
// Defaults
// ================================================================================

const (
	// DefaultPageSize is the page size for service listings.
	DefaultPageSize = 50

	// MaxPageSize caps requested page sizes.
	MaxPageSize = 500

	// DefaultTokenTTL is the lifetime of issued access tokens.
	DefaultTokenTTL = 1 * time.Hour
)
