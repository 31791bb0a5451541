package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindUnexpected      Kind = "UNEXPECTED"
)

// FieldError names one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// AppError is returned by services and translated to HTTP by the API layer only.
type AppError struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind) + ": " + e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+" "+f.Reason)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Err }

// Is matches sentinel errors of the same kind and message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || e.Message == t.Message)
}

// HasField reports whether a validation error names field.
func (e *AppError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// New creates an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Validation creates a validation error carrying every rejected field.
func Validation(fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: "Données invalides", Fields: fields}
}

// Unauthenticated creates a 401 error.
func Unauthenticated(message string) *AppError {
	return New(KindUnauthenticated, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return New(KindForbidden, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return New(KindConflict, message)
}

// Unexpected wraps an infrastructure failure.
func Unexpected(err error) *AppError {
	return &AppError{Kind: KindUnexpected, Message: "Erreur interne du serveur", Err: err}
}

// Common sentinel errors shared by services and the access layer.
var (
	ErrInvalidCredentials = Unauthenticated("Email ou mot de passe incorrect")
	ErrInvalidToken       = Unauthenticated("Token invalide ou expiré")
	ErrMissingToken       = Unauthenticated("Authentification requise")
	ErrForbidden          = Forbidden("Accès refusé")
	ErrUserNotFound       = NotFound("Utilisateur introuvable")
	ErrHotelNotFound      = NotFound("Hôtel introuvable")
	ErrBookingNotFound    = NotFound("Réservation introuvable")
	ErrEmailTaken         = Conflict("Cet email est déjà utilisé")
)

// KindOf returns the kind of err, Unexpected for foreign errors.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// IsKind checks the kind of err through wrapping.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
	}
}

var statusByKind = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become 500
// with a generic message so store details never leak.
func MapErrorToHTTP(err error) *HTTPError {
	var ae *AppError
	if !errors.As(err, &ae) || ae.Kind == KindUnexpected {
		return NewHTTPError(http.StatusInternalServerError, "Erreur interne du serveur", string(KindUnexpected))
	}
	status, ok := statusByKind[ae.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	httpErr := NewHTTPError(status, ae.Message, string(ae.Kind))
	httpErr.Fields = ae.Fields
	return httpErr
}
