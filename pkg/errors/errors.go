package errors

import (
	"fmt"
	"net/http"
)

// Error codes mirror the HTTP reason phrase of the status they map to,
// which is what ends up in the response body.
const (
	CodeBadRequest = "Bad Request"
	CodeNotFound   = "Not Found"
	CodeConflict   = "Conflict"
	CodeInternal   = "Internal Server Error"
)

type AppError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	HTTPStatus  int               `json:"-"`
	FieldErrors map[string]string `json:"-"`
	Err         error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:       CodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ValidationFields carries per-field messages; the HTTP layer renders them
// as a bare {field: message} object.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Code:        CodeBadRequest,
		Message:     "Validation failed",
		HTTPStatus:  http.StatusBadRequest,
		FieldErrors: fields,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
