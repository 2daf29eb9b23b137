// Package apperror defines the typed failure kinds shared by every domain
// service. Handlers translate kinds to HTTP statuses; services never pick
// status codes themselves.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a failure for the route layer.
type Kind int

const (
	// KindUnknown covers wrapped infrastructure errors with no domain meaning.
	KindUnknown Kind = iota
	// KindNotFound — the referenced entity does not exist.
	KindNotFound
	// KindRecordLocked — the record's mutability window has elapsed.
	KindRecordLocked
	// KindInvalidCredential — login or reset verification mismatch.
	KindInvalidCredential
	// KindValidationFailed — malformed input to a create/update.
	KindValidationFailed
	// KindGenerationFailed — external collaborator error or non-zero exit.
	KindGenerationFailed
	// KindConflict — duplicate registration detected by the pre-check.
	KindConflict
)

// Error carries a kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(entity string) *Error {
	return Newf(KindNotFound, "%s not found", entity)
}

func ValidationFailed(message string) *Error {
	return New(KindValidationFailed, message)
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to its HTTP status. The mapping lives here so
// services never pick status codes themselves.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindRecordLocked:
		return http.StatusForbidden
	case KindInvalidCredential:
		return http.StatusUnauthorized
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindGenerationFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts any error into an echo HTTPError using the kind mapping.
func ToHTTP(err error) *echo.HTTPError {
	var e *Error
	if errors.As(err, &e) {
		return echo.NewHTTPError(HTTPStatus(e.Kind), e.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
