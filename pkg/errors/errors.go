package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes.
type ErrorCode string

const (
	// Authentication errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Validation errors
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// Record errors
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateEntry ErrorCode = "DUPLICATE_ENTRY"

	// Aggregation errors
	ErrCodeAggregateUpdate ErrorCode = "AGGREGATE_UPDATE_ERROR"
	ErrCodeSubscription    ErrorCode = "SUBSCRIPTION_ERROR"

	// System errors
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimit          ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// ServiceError represents a standardized application error.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	cause      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// New creates a new ServiceError.
func New(code ErrorCode, message string) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		StatusCode: httpStatusFor(code),
		Details:    make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ServiceError.
func Wrap(err error, code ErrorCode, message string) *ServiceError {
	e := New(code, message)
	e.cause = err
	if err != nil {
		e.Details["original_error"] = err.Error()
	}
	return e
}

// AddDetail adds a detail to the error.
func (e *ServiceError) AddDetail(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// httpStatusFor maps error codes to HTTP status codes.
func httpStatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeMissingField:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateEntry:
		return http.StatusConflict
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors.

func Unauthorized(message string) *ServiceError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *ServiceError {
	return New(ErrCodeForbidden, message)
}

// ValidationError reports malformed input to a CRUD operation. Never retried.
func ValidationError(message string) *ServiceError {
	return New(ErrCodeValidation, message)
}

// MissingField reports a required field absent from a variant payload.
func MissingField(field string) *ServiceError {
	return New(ErrCodeMissingField, fmt.Sprintf("missing required field: %s", field)).
		AddDetail("field", field)
}

// NotFound reports an operation referencing a nonexistent record.
func NotFound(resource string) *ServiceError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// AggregateUpdateError reports a failed dashboard aggregate transaction.
// Logged at the service boundary, never surfaced to the caller of the
// originating record write.
func AggregateUpdateError(err error) *ServiceError {
	return Wrap(err, ErrCodeAggregateUpdate, "dashboard aggregate update failed")
}

// SubscriptionError reports a failed live-query or event subscription.
func SubscriptionError(err error) *ServiceError {
	return Wrap(err, ErrCodeSubscription, "subscription failure")
}

func Internal(message string) *ServiceError {
	return New(ErrCodeInternal, message)
}

func ServiceUnavailable(service string) *ServiceError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("%s service unavailable", service))
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND service error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation reports whether err is (or wraps) a validation-class error.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation) || hasCode(err, ErrCodeMissingField)
}

func hasCode(err error, code ErrorCode) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
