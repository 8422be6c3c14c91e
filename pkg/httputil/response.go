package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/nimson07/postFlow/pkg/errors"
	"github.com/nimson07/postFlow/pkg/logger"
	"github.com/nimson07/postFlow/pkg/validator"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Details   map[string]any    `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// MessageResponse is the payload for endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps v in the success envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteMessage writes {"data":{"message":...}} with a 200 status.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteData(w, http.StatusOK, MessageResponse{Message: message})
}

type sentinelError struct {
	target  error
	code    string
	message string
}

// sentinelErrors render bare sentinels that were not wrapped in an AppError.
// An empty message means the error text itself is safe to show.
var sentinelErrors = []sentinelError{
	{apperrors.ErrNotFound, "NOT_FOUND", "resource not found"},
	{apperrors.ErrAlreadyExists, "ALREADY_EXISTS", "resource already exists"},
	{apperrors.ErrInvalidInput, "INVALID_INPUT", ""},
	{apperrors.ErrUnauthorized, "UNAUTHORIZED", "not authenticated"},
	{apperrors.ErrForbidden, "FORBIDDEN", "insufficient permissions"},
}

// errorBody maps err to a status and client-safe body. Unrecognised errors
// become an opaque 500.
func errorBody(err error) (int, *ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, &ErrorResponse{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	}
	for _, s := range sentinelErrors {
		if !errors.Is(err, s.target) {
			continue
		}
		msg := s.message
		if msg == "" {
			msg = err.Error()
		}
		return apperrors.HTTPStatus(err), &ErrorResponse{Code: s.code, Message: msg}
	}
	return http.StatusInternalServerError, &ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
}

// WriteError renders err in the error envelope, tagged with the request's
// correlation id. 5xx causes are logged and never sent to the client. The
// request logger is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	status, body := errorBody(err)
	body.RequestID = logger.CorrelationIDFromContext(r.Context())

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}
	WriteJSON(w, status, Response{Error: body})
}

func writeBadRequest(w http.ResponseWriter, code, message string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: code, Message: message, Fields: fields},
	})
}

// WriteValidationError writes a 400 carrying per-field messages when err is
// a *validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed", valErr.Fields())
		return
	}
	writeBadRequest(w, "INVALID_INPUT", err.Error(), nil)
}

// DecodeJSON reads at most 1 MiB of JSON into dst and validates it. On
// failure the 400 has already been written and false is returned.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "INVALID_INPUT", fmt.Sprintf("invalid request body: %v", err), nil)
		return false
	}
	if err := validator.Validate(dst); err != nil {
		WriteValidationError(w, err)
		return false
	}
	return true
}

// ParseUUID parses a path id. A malformed id gets a 400 INVALID_PARAMETER
// and ok=false.
func ParseUUID(w http.ResponseWriter, param string) (id uuid.UUID, ok bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		writeBadRequest(w, "INVALID_PARAMETER", "invalid UUID: "+param, nil)
		return uuid.Nil, false
	}
	return id, true
}
