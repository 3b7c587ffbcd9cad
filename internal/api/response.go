package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data   interface{}    `json:"data"`
	Notice *domain.Notice `json:"notice,omitempty"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error  string         `json:"error"`
	Code   string         `json:"code,omitempty"`
	Notice *domain.Notice `json:"notice,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// SuccessWithNotice writes a successful JSON response carrying a notice, used
// when an operation completed but found nothing.
func SuccessWithNotice(w http.ResponseWriter, status int, data interface{}, notice *domain.Notice) {
	JSON(w, status, SuccessResponse{Data: data, Notice: notice})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorWithCode writes an error JSON response with a machine-readable code
// for failures raised outside the domain layer.
func ErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorResponse{Error: message, Code: code})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeExternalService:
		return http.StatusBadGateway
	case domain.ErrCodePlatformCapability:
		return http.StatusServiceUnavailable
	case domain.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error type
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)
	notice := domain.NoticeFor(err)
	JSON(w, status, ErrorResponse{
		Error:  err.Error(),
		Code:   domain.CodeOf(err),
		Notice: &notice,
	})
}
