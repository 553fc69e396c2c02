package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Details []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
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

// Is matches errors sharing the same code so cloned sentinels still compare equal.
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

// Predefined errors for common scenarios.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Validation failed")
	ErrDuplicateEmail     = New("DUPLICATE_EMAIL", http.StatusBadRequest, "User already exists with this email")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid credentials")
	ErrInvalidToken       = New("INVALID_TOKEN", http.StatusUnauthorized, "Invalid token")
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized, "Token expired")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "Access denied. No token provided.")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "Access denied")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "Resource not found")
	ErrImageUpload        = New("IMAGE_UPLOAD_ERROR", http.StatusBadRequest, "Image upload failed")
	ErrUnsupportedFormat  = New("UNSUPPORTED_FORMAT", http.StatusBadRequest, "Invalid format. Use csv or pdf.")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "Server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
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
	clone.Details = nil
	clone.Err = nil
	return &clone
}

// Validation builds a VALIDATION_ERROR carrying per-field details.
// Errors produced by go-playground/validator are expanded into readable messages.
func Validation(err error, message string) *Error {
	out := Clone(ErrValidation, message)
	out.Err = err
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Details = append(out.Details, FieldError{Field: fieldName(fe), Message: describe(fe)})
		}
	}
	return out
}

// WithField returns a VALIDATION_ERROR for a single field.
func WithField(field, message string) *Error {
	out := Clone(ErrValidation, message)
	out.Details = []FieldError{{Field: field, Message: message}}
	return out
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	if ns == "" {
		ns = fe.Field()
	}
	return lowerFirst(ns)
}

func describe(fe validator.FieldError) string {
	name := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Please provide a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", name, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
