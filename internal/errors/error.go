package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryCatalog    Category = "catalog"
	CategorySubmission Category = "submission"
	CategoryTransport  Category = "transport"
	CategoryCLI        Category = "cli"
)

// SiteError is a structured error with a stable code, detail and hint.
type SiteError struct {
	// Code is a unique error identifier (e.g., "S001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SiteError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a SiteError with the same code.
func (e *SiteError) Is(target error) bool {
	t, ok := target.(*SiteError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *SiteError) WithSuggestion(s string) *SiteError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *SiteError) WithDetail(d string) *SiteError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detail to the error.
func (e *SiteError) WithDetailf(format string, args ...any) *SiteError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *SiteError) Wrap(err error) *SiteError {
	e.Wrapped = err
	return e
}

// New creates a SiteError from a registered error code.
func New(code string) *SiteError {
	template, ok := registry[code]
	if !ok {
		return &SiteError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &SiteError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// FromError wraps a standard error in a SiteError.
// Errors that already are SiteErrors are returned unchanged.
func FromError(err error, code string) *SiteError {
	if err == nil {
		return nil
	}
	var se *SiteError
	if stderrors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first SiteError in err's chain, or "".
func CodeOf(err error) string {
	var se *SiteError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}
