package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code and message, so a wrapped
// sentinel still matches errors.Is against the bare sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of e that wraps err.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// CodeOf returns the DomainError code found in err's chain, or "".
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Common domain error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	ErrCodePlatformCapability = "PLATFORM_CAPABILITY_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery        = NewDomainError(ErrCodeValidation, "search query is required")
	ErrEmptyWorkingList  = NewDomainError(ErrCodeValidation, "restaurant list is empty, search an address first")
	ErrInvalidRadius     = NewDomainError(ErrCodeValidation, "radius must be between 1 and 20000 meters")
	ErrInvalidSampleSize = NewDomainError(ErrCodeValidation, "recommendation count cannot be negative")
	ErrInvalidCoordinate = NewDomainError(ErrCodeValidation, "coordinate is out of range")
)

// Not found errors
var (
	ErrCandidateNotFound = NewDomainError(ErrCodeNotFound, "candidate not found")
	ErrFrameNotReady     = NewDomainError(ErrCodeNotFound, "map has not been rendered yet")
)

// External service errors
var (
	ErrSearchFailed = NewDomainError(ErrCodeExternalService, "search request failed")
)

// Platform capability errors
var (
	ErrLocationUnsupported = NewDomainError(ErrCodePlatformCapability, "location service is not available")
	ErrLocationDenied      = NewDomainError(ErrCodePlatformCapability, "could not determine current location")
)
