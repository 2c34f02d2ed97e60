// Package errors provides standardized error handling shared by the API,
// the CLI and the persistence layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists  ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeGroupNotFound      ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeScheduleNotFound   ErrorCode = "SCHEDULE_NOT_FOUND"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnknownPlatform    ErrorCode = "UNKNOWN_PLATFORM"
	ErrCodeUnknownFeature     ErrorCode = "UNKNOWN_FEATURE"
	ErrCodeUnsupportedFormat  ErrorCode = "UNSUPPORTED_EXPORT_FORMAT"
	ErrCodeCatalogInvalid     ErrorCode = "CATALOG_INVALID"
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecution     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewUserNotFoundError creates a non-retryable lookup error.
func NewUserNotFoundError(ref string) *StandardError {
	return newError(ErrCodeUserNotFound, "User not found", fmt.Sprintf("user: %s", ref), false, nil)
}

// NewUserAlreadyExistsError creates a non-retryable conflict error.
func NewUserAlreadyExistsError(name string) *StandardError {
	return newError(ErrCodeUserAlreadyExists, "User already exists", fmt.Sprintf("name: %s", name), false, nil)
}

func NewGroupNotFoundError(groupID string) *StandardError {
	return newError(ErrCodeGroupNotFound, "Group not found", fmt.Sprintf("groupId: %s", groupID), false, nil)
}

func NewScheduleNotFoundError(scheduleID string) *StandardError {
	return newError(ErrCodeScheduleNotFound, "Schedule not found", fmt.Sprintf("scheduleId: %s", scheduleID), false, nil)
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false, nil)
}

func NewUnknownPlatformError(key string) *StandardError {
	return newError(ErrCodeUnknownPlatform, "Platform not in catalog", fmt.Sprintf("platform: %s", key), false, nil)
}

func NewUnknownFeatureError(names []string) *StandardError {
	return newError(ErrCodeUnknownFeature, "Unknown feature name", fmt.Sprintf("features: %s", strings.Join(names, ", ")), false, nil)
}

func NewUnsupportedFormatError(format string) *StandardError {
	return newError(ErrCodeUnsupportedFormat, "Unsupported export format", fmt.Sprintf("format: %s", format), false, nil)
}

// NewCatalogInvalidError reports a platform catalog that cannot be loaded.
func NewCatalogInvalidError(details string, err error) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Platform catalog is invalid", details, false, err)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnection, "Database connection error", err.Error(), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecution, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code to the response status used by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUserNotFound, ErrCodeGroupNotFound, ErrCodeScheduleNotFound:
		return http.StatusNotFound
	case ErrCodeUserAlreadyExists:
		return http.StatusConflict
	case ErrCodeValidationFailed, ErrCodeUnknownPlatform, ErrCodeUnknownFeature, ErrCodeUnsupportedFormat:
		return http.StatusBadRequest
	case ErrCodeDatabaseConnection, ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasSuffix(codeStr, "NOT_FOUND") || strings.HasSuffix(codeStr, "ALREADY_EXISTS"):
		return "RESOURCE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "UNKNOWN") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
