package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wildfiresync/gendersync/internal/model"
	"github.com/wildfiresync/gendersync/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeInvalidBaseVersion = "INVALID_BASE_VERSION"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeSessionUnavailable = "SESSION_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := ToHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return ToHTTPError(err).status
}

// Body returns the APIError an error maps to
func Body(err error) APIError {
	return ToHTTPError(err).apiError
}

// ToHTTPError converts an error to an httpError
func ToHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Sync errors
	case errors.Is(err, model.ErrVersionConflict):
		return &httpError{http.StatusConflict, APIError{CodeVersionConflict, "Base version is behind the stored profile; re-fetch and retry"}}
	case errors.Is(err, model.ErrInvalidBaseVersion):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidBaseVersion, "Base version cannot be ahead of the stored profile"}}
	case errors.Is(err, model.ErrPayloadTooLarge):
		return &httpError{http.StatusRequestEntityTooLarge, APIError{CodePayloadTooLarge, "Payload exceeds the maximum allowed size"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Profile store is temporarily unavailable"}}

	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication token is invalid or has expired"}}
	case errors.Is(err, auth.ErrWrongAccount):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "The provided authentication is not valid for the requested player"}}
	case errors.Is(err, auth.ErrSessionRejected):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Couldn't authenticate against the session servers; did you forget to send a join server request?"}}
	case errors.Is(err, auth.ErrSessionUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeSessionUnavailable, "Session servers are unreachable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnprocessableError creates an error for a request that parses as HTTP
// but carries an unusable body
func NewUnprocessableError(message string) error {
	return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
