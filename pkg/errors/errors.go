// Package errors defines the structured error type used across the CRS service.
// Errors carry a machine-readable code, an HTTP status, and optional metadata
// so interface layers can render them without switching on error strings.
package errors

import (
	"fmt"
	"net/http"

	"github.com/turtacn/crs/pkg/constants"
)

// ================================================================================
// Error Interface
// ================================================================================

// CRSError is a structured error with a code, HTTP status, and metadata.
type CRSError interface {
	error

	// Code returns the machine-readable error code.
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status the error maps to.
	HTTPStatus() int

	// Description returns a human-readable description of the error class.
	Description() string

	// Unwrap returns the underlying cause for error-chain support.
	Unwrap() error

	// WithCause attaches a cause error.
	WithCause(cause error) CRSError

	// WithMetadata attaches a context key/value pair.
	WithMetadata(key string, value interface{}) CRSError

	// Metadata returns all attached metadata.
	Metadata() map[string]interface{}
}

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode { return e.code }
func (e *baseError) HTTPStatus() int           { return e.httpStatus }
func (e *baseError) Description() string       { return e.description }
func (e *baseError) Unwrap() error             { return e.cause }

func (e *baseError) WithCause(cause error) CRSError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) CRSError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

// NewError creates a CRSError with the given parameters.
func NewError(code constants.ErrorCode, httpStatus int, description, message string) CRSError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error.
func ErrInvalidRequest(message string) CRSError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter, includes an invalid value, or is otherwise malformed.",
		message,
	)
}

// ErrUnauthorized creates an unauthorized error.
func ErrUnauthorized(message string) CRSError {
	return NewError(
		constants.ErrCodeUnauthorized,
		http.StatusUnauthorized,
		"Client authentication failed or the access token is missing, expired, or invalid.",
		message,
	)
}

// ErrServerError creates a server_error error.
func ErrServerError(message string) CRSError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The service encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ErrUnavailable creates a temporarily_unavailable error.
func ErrUnavailable(message string) CRSError {
	return NewError(
		constants.ErrCodeUnavailable,
		http.StatusServiceUnavailable,
		"The service is currently unable to handle the request due to a dependency outage.",
		message,
	)
}

// ================================================================================
// Domain-Specific Constructors
// ================================================================================

// ErrServiceNotFound signals that no service with the given name+version exists.
func ErrServiceNotFound(name, version string) CRSError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"Scoring service not found",
		fmt.Sprintf("scoring service %s@%s not found", name, version),
	).WithMetadata("service_name", name).
		WithMetadata("service_version", version)
}

// ErrServiceExists signals a publish against an already-taken name+version.
func ErrServiceExists(name, version string) CRSError {
	return NewError(
		constants.ErrCodeConflict,
		http.StatusConflict,
		"Scoring service already published",
		fmt.Sprintf("scoring service %s@%s already exists", name, version),
	).WithMetadata("service_name", name).
		WithMetadata("service_version", version)
}

// ErrGenerationConflict signals a compare-and-swap failure on model rebind.
func ErrGenerationConflict(name, version string, expected int64) CRSError {
	return NewError(
		constants.ErrCodeConflict,
		http.StatusConflict,
		"Service binding changed concurrently",
		fmt.Sprintf("generation %d is stale for %s@%s", expected, name, version),
	).WithMetadata("service_name", name).
		WithMetadata("service_version", version).
		WithMetadata("expected_generation", expected)
}

// ErrModelNotFound signals a missing model artifact.
func ErrModelNotFound(modelID string) CRSError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"Model artifact not found",
		fmt.Sprintf("model artifact %s not found", modelID),
	).WithMetadata("model_id", modelID)
}

// ErrSchemaMismatch signals a scoring payload that violates the input schema.
func ErrSchemaMismatch(field, reason string) CRSError {
	return NewError(
		constants.ErrCodeSchemaMismatch,
		http.StatusBadRequest,
		"Request does not match the service input schema",
		fmt.Sprintf("field %q %s", field, reason),
	).WithMetadata("field", field).
		WithMetadata("reason", reason)
}

// ErrTrainingFailed signals a failed training run.
func ErrTrainingFailed(reason string) CRSError {
	return NewError(
		constants.ErrCodeTrainingFailed,
		http.StatusUnprocessableEntity,
		"Model training failed",
		fmt.Sprintf("training failed: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrDatabaseOperation wraps a storage failure.
func ErrDatabaseOperation(cause error) CRSError {
	return ErrServerError("database operation failed").WithCause(cause)
}

// ErrCacheOperation wraps a cache failure.
func ErrCacheOperation(cause error) CRSError {
	return ErrUnavailable("cache operation failed").WithCause(cause)
}

// ================================================================================
// Inspection Utilities
// ================================================================================

// AsCRSError attempts to cast an error to CRSError.
func AsCRSError(err error) (CRSError, bool) {
	crsErr, ok := err.(CRSError)
	return crsErr, ok
}

// IsNotFound reports whether err is a not_found CRSError.
func IsNotFound(err error) bool {
	if crsErr, ok := AsCRSError(err); ok {
		return crsErr.Code() == constants.ErrCodeNotFound
	}
	return false
}

// IsConflict reports whether err is a conflict CRSError.
func IsConflict(err error) bool {
	if crsErr, ok := AsCRSError(err); ok {
		return crsErr.Code() == constants.ErrCodeConflict
	}
	return false
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error into an ErrorResponse, masking internals
// for non-structured errors.
func ToErrorResponse(err error) *ErrorResponse {
	if crsErr, ok := AsCRSError(err); ok {
		return &ErrorResponse{
			Error:            string(crsErr.Code()),
			ErrorDescription: crsErr.Error(),
			Metadata:         crsErr.Metadata(),
		}
	}
	return &ErrorResponse{
		Error:            string(constants.ErrCodeServerError),
		ErrorDescription: "An unexpected error occurred",
	}
}
