package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure the transport can render without parsing messages.
type Kind string

const (
	KindUnknownItem    Kind = "UNKNOWN_ITEM"
	KindNoItemSelected Kind = "NO_ITEM_SELECTED"
	KindNotAnImage     Kind = "NOT_AN_IMAGE"
	KindDuplicate      Kind = "DUPLICATE_SUBMISSION"
	KindStorage        Kind = "STORAGE_FAILURE"
	KindRateLimited    Kind = "RATE_LIMITED"
	KindInvalidEvent   Kind = "INVALID_EVENT"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindNotFound       Kind = "NOT_FOUND"
)

// AppError is a custom error type that carries a Kind and an HTTP status code
type AppError struct {
	Kind    Kind   `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Kind, so a wrapped AppError compares equal to the sentinel of its kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether the caller may resend the same request.
func (e *AppError) Retryable() bool {
	return e.Kind == KindStorage || e.Kind == KindRateLimited
}

// NewAppError creates a new AppError
func NewAppError(kind Kind, status int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// Common errors
var (
	ErrUnknownItem         = NewAppError(KindUnknownItem, http.StatusNotFound, "Unknown item")
	ErrNoItemSelected      = NewAppError(KindNoItemSelected, http.StatusConflict, "No item selected")
	ErrNotAnImage          = NewAppError(KindNotAnImage, http.StatusUnprocessableEntity, "Payload is not an image")
	ErrDuplicateSubmission = NewAppError(KindDuplicate, http.StatusConflict, "Image already received")
	ErrStorageFailure      = NewAppError(KindStorage, http.StatusServiceUnavailable, "Storage unavailable, try again")
	ErrRateLimited         = NewAppError(KindRateLimited, http.StatusTooManyRequests, "Too many submissions")
	ErrInvalidEvent        = NewAppError(KindInvalidEvent, http.StatusBadRequest, "Invalid event")
	ErrUnauthorized        = NewAppError(KindUnauthorized, http.StatusUnauthorized, "Unauthorized access")
	ErrNotFound            = NewAppError(KindNotFound, http.StatusNotFound, "Resource not found")
)

// Storage wraps a low-level persistence error as a retryable StorageFailure.
func Storage(err error) *AppError {
	return &AppError{
		Kind:    KindStorage,
		Status:  http.StatusServiceUnavailable,
		Message: ErrStorageFailure.Message,
		Err:     err,
	}
}

// UnknownItem names the item that could not be found.
func UnknownItem(name string) *AppError {
	return NewAppError(KindUnknownItem, http.StatusNotFound, fmt.Sprintf("Unknown item %q", name))
}

// InvalidEvent builds an INVALID_EVENT error with a specific message.
func InvalidEvent(msg string) *AppError {
	return NewAppError(KindInvalidEvent, http.StatusBadRequest, msg)
}

// Unauthorized builds an UNAUTHORIZED error with a specific message.
func Unauthorized(msg string) *AppError {
	return NewAppError(KindUnauthorized, http.StatusUnauthorized, msg)
}

// As extracts the AppError from err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindStorage for unclassified errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindStorage
}
