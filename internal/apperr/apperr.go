// Package apperr carries an HTTP status and a client-safe message alongside
// the underlying error.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Err        error  `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Err: err, Message: message, Code: "BAD_REQUEST", HTTPStatus: http.StatusBadRequest}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{Err: err, Message: message, Code: "UNAUTHORIZED", HTTPStatus: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Message: message, Code: "FORBIDDEN", HTTPStatus: http.StatusForbidden}
}

func NotFound(message string, err error) *AppError {
	return &AppError{Err: err, Message: message, Code: "NOT_FOUND", HTTPStatus: http.StatusNotFound}
}

func TooManyRequests() *AppError {
	return &AppError{Message: "too many requests", Code: "RATE_LIMITED", HTTPStatus: http.StatusTooManyRequests}
}

// Internal hides err from the client; the message is generic.
func Internal(err error) *AppError {
	return &AppError{Err: err, Message: "Server Error", Code: "INTERNAL_ERROR", HTTPStatus: http.StatusInternalServerError}
}

// As extracts an *AppError, wrapping anything else as Internal.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Write sends e as a {"message"} JSON body. With detail set, 5xx responses
// also carry the underlying error.
func Write(w http.ResponseWriter, e *AppError, detail bool) {
	body := map[string]string{"message": e.Message}
	if detail && e.HTTPStatus >= 500 && e.Err != nil {
		body["error"] = e.Err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}
