package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidInput     = errors.New("invalid input")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Invalid builds a validation failure (bad id, bad word, malformed query).
func Invalid(format string, args ...any) *AppError {
	return Newf(ErrInvalidInput, http.StatusBadRequest, format, args...)
}

// NotFound builds a lookup failure for an unknown document id.
func NotFound(format string, args ...any) *AppError {
	return Newf(ErrDocumentNotFound, http.StatusNotFound, format, args...)
}

// Exists builds a failure for an id that is already taken.
func Exists(format string, args ...any) *AppError {
	return Newf(ErrDocumentExists, http.StatusConflict, format, args...)
}

// OutOfRange builds a lookup failure for a position outside the document list.
func OutOfRange(format string, args ...any) *AppError {
	return Newf(ErrIndexOutOfRange, http.StatusNotFound, format, args...)
}

// IsValidation reports whether err is a validation failure. A duplicate
// document id counts as one.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDocumentExists)
}

// IsLookup reports whether err is a failed lookup by id or position.
func IsLookup(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrIndexOutOfRange)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, ErrDocumentExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
