package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed gateway error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on the error code so clones of a predefined error compare equal to it.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// MessageBackendUnavailable is shown for any 5xx or transport failure of the remote API.
const MessageBackendUnavailable = "Une erreur est survenue. Veuillez réessayer plus tard."

// Predefined errors for common scenarios.
var (
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "authentification requise")
	ErrSessionExpired       = New("SESSION_EXPIRED", http.StatusUnauthorized, "session expirée, veuillez vous reconnecter")
	ErrForbidden            = New("FORBIDDEN", http.StatusForbidden, "accès refusé")
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "ressource introuvable")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "données invalides")
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusPreconditionRequired, "confirmation requise")
	ErrBackendRejected      = New("BACKEND_REJECTED", http.StatusBadRequest, "requête refusée")
	ErrBackendUnavailable   = New("BACKEND_UNAVAILABLE", http.StatusBadGateway, MessageBackendUnavailable)
	ErrStaleResponse        = New("STALE_RESPONSE", http.StatusConflict, "sélection remplacée entre-temps")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "erreur interne")
	ErrSessionNotFound      = New("SESSION_NOT_FOUND", http.StatusUnauthorized, "session introuvable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithStatus returns a copy of the error reporting the given HTTP status.
func WithStatus(err *Error, status int) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if status > 0 {
		clone.Status = status
	}
	return &clone
}

// IsSessionExpiry reports whether err means the caller must log in again.
func IsSessionExpiry(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrUnauthorized)
}
