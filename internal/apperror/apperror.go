package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups errors by how the API reports them
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidState
	KindConflict
)

// Stable machine-readable codes carried in every error body
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidState       = "INVALID_STATE"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeAlreadyHasPO       = "ALREADY_HAS_PO"
	CodeAlreadyDelivered   = "ALREADY_DELIVERED"
	CodeInternal           = "INTERNAL_ERROR"
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the business error type returned by services and rendered by handlers
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so that errors.Is works against the exported sentinels
// even after a message has been customised.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus maps the error kind onto a response status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidState, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrAccountDisabled    = &Error{Kind: KindUnauthenticated, Code: CodeAccountDisabled, Message: "Account is disabled"}
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Code: CodeDuplicateEmail, Message: "Email already registered"}
	ErrAlreadyHasPO       = &Error{Kind: KindConflict, Code: CodeAlreadyHasPO, Message: "Purchase order already exists for this request"}
	ErrAlreadyDelivered   = &Error{Kind: KindConflict, Code: CodeAlreadyDelivered, Message: "Purchase order already marked as delivered"}
)

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: message, Fields: fields}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Code: CodeUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Code: CodeInvalidState, Message: message}
}

// Internal wraps an unexpected failure; the message is never shown to callers
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// As extracts an *Error from err, reporting false for foreign errors
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
