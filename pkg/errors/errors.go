package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by every layer. AppError values wrap one of these so
// callers can match with errors.Is regardless of the message.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordNotSet     = errors.New("password not set")
	ErrAlreadySet         = errors.New("password already set")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(status int, code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return NotFoundMessage(fmt.Sprintf("%s with id %s not found", resource, id))
}

// NotFoundMessage creates a 404 error with a caller-supplied message.
func NotFoundMessage(message string) *AppError {
	return newAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

// AlreadyExists creates a 400 error. PostFlow clients treat duplicate
// resources as a bad request rather than a conflict.
func AlreadyExists(resource, field, value string) *AppError {
	return AlreadyExistsMessage(fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

// AlreadyExistsMessage creates a 400 duplicate error with a caller-supplied
// message.
func AlreadyExistsMessage(message string) *AppError {
	return newAppError(http.StatusBadRequest, "ALREADY_EXISTS", message, ErrAlreadyExists)
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newAppError(http.StatusBadRequest, "INVALID_INPUT", message, ErrInvalidInput)
}

// Unauthorized creates a 401 error. It is the single "unauthenticated"
// outcome: missing, invalid or expired tokens, inactivity and unknown users.
func Unauthorized(message string) *AppError {
	return newAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return newAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

// InvalidCredentials creates a 401 error for a failed email/password check.
// The message is identical for unknown emails and wrong passwords.
func InvalidCredentials() *AppError {
	return newAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", ErrInvalidCredentials)
}

// PasswordNotSet creates a 403 error for accounts that still need their
// initial password.
func PasswordNotSet() *AppError {
	e := newAppError(http.StatusForbidden, "PASSWORD_NOT_SET", "please set your password first", ErrPasswordNotSet)
	e.Details = map[string]any{"requires_password_setup": true}
	return e
}

// AlreadySet creates a 400 error for a repeated initial password setup.
func AlreadySet(message string) *AppError {
	return newAppError(http.StatusBadRequest, "PASSWORD_ALREADY_SET", message, ErrAlreadySet)
}

// Internal creates a 500 error. The wrapped cause is kept for logging only
// and never rendered to clients.
func Internal(err error) *AppError {
	return newAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", err)
}

// sentinelStatus maps bare sentinels to a status for errors that never
// became an AppError.
var sentinelStatus = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusBadRequest},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrAlreadySet, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrPasswordNotSet, http.StatusForbidden},
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
