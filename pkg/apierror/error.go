package apierror

import (
	"encoding/json"
	"net/http"
)

// Error is a structured API error carrying the HTTP status it should be
// rendered with.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ToJSON converts the error to the standard response envelope.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    e.Code,
			"message": e.Message,
		},
	})
	return data
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{StatusCode: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// Conflict creates a 409 Conflict error.
func Conflict(message string) *Error {
	return &Error{StatusCode: http.StatusConflict, Code: "CONFLICT", Message: message}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}
