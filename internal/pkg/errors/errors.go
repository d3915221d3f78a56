package errors

import (
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeDatabase          = "DATABASE_ERROR"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeDecodeFailure     = "DECODE_FAILURE"
	ErrCodeFetchFailure      = "FETCH_FAILURE"
	ErrCodeBaselineMissing   = "BASELINE_MISSING"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeRateLimited       = "RATE_LIMITED"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// Common error constructors

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error, optionally carrying details
func ValidationError(message string, details ...interface{}) *AppError {
	err := New(ErrCodeValidation, message, http.StatusBadRequest)
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// DimensionMismatch creates an error for images whose sizes differ.
// Both size pairs are carried in the details so the caller can report them.
func DimensionMismatch(baselineW, baselineH, currentW, currentH int) *AppError {
	return New(ErrCodeDimensionMismatch,
		fmt.Sprintf("image dimensions differ: baseline %dx%d, current %dx%d",
			baselineW, baselineH, currentW, currentH),
		http.StatusUnprocessableEntity).
		WithDetails(map[string]int{
			"baseline_width":  baselineW,
			"baseline_height": baselineH,
			"current_width":   currentW,
			"current_height":  currentH,
		})
}

// DecodeFailure creates an error for corrupt or unsupported image bytes
func DecodeFailure(ref string, err error) *AppError {
	return Wrap(err, ErrCodeDecodeFailure,
		fmt.Sprintf("failed to decode image %s", ref),
		http.StatusUnprocessableEntity)
}

// FetchFailure creates an error for a screenshot that could not be retrieved
func FetchFailure(ref string, err error) *AppError {
	return Wrap(err, ErrCodeFetchFailure,
		fmt.Sprintf("failed to fetch screenshot %s", ref),
		http.StatusBadGateway)
}

// BaselineMissing creates the expected, non-exceptional no-baseline error
func BaselineMissing(suiteID int64) *AppError {
	return New(ErrCodeBaselineMissing,
		fmt.Sprintf("no baseline configured for suite %d", suiteID),
		http.StatusPreconditionFailed)
}

// InvalidStatus creates an error for an unknown review status value
func InvalidStatus(status string) *AppError {
	return New(ErrCodeInvalidStatus,
		fmt.Sprintf("invalid review status %q", status),
		http.StatusBadRequest)
}

// RateLimited creates a rate limited error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}
