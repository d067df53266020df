package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campusevents/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// domainErrors maps the service sentinel errors onto a status and error code, checked in order.
// A non-empty message replaces the error text in the response.
var domainErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{err: domain.ErrNotFound, status: http.StatusNotFound, code: ErrCodeNotFound},
	{err: domain.ErrUnauthorized, status: http.StatusForbidden, code: ErrCodeForbidden},
	{err: domain.ErrSelfModification, status: http.StatusForbidden, code: ErrCodeForbidden},
	{err: domain.ErrDuplicateRegistration, status: http.StatusConflict, code: ErrCodeConflict},
	{err: domain.ErrCapacityExceeded, status: http.StatusConflict, code: ErrCodeConflict},
	{err: domain.ErrDuplicateUsername, status: http.StatusConflict, code: ErrCodeConflict},
	{err: domain.ErrDuplicateEmail, status: http.StatusConflict, code: ErrCodeConflict},
	{err: domain.ErrInvalidInput, status: http.StatusBadRequest, code: ErrCodeBadRequest},
	{err: domain.ErrInvalidCredentials, status: http.StatusUnauthorized, code: ErrCodeUnauthorized, message: "invalid credentials"},
}

// WriteDomainError writes err as an error envelope when it wraps one of the domain sentinel
// errors and reports whether it did. Nothing is written for any other error.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	for _, de := range domainErrors {
		if !errors.Is(err, de.err) {
			continue
		}
		msg := de.message
		if msg == "" {
			msg = err.Error()
		}
		WriteJSONError(w, de.status, de.code, msg)
		return true
	}
	return false
}
