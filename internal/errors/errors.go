// Package errors provides structured error types for the filehook system.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryItem       ErrorCategory = "ITEM"
	ErrCategoryStore      ErrorCategory = "STORE"
	ErrCategoryConfig     ErrorCategory = "CONFIG"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeNotAFileItem    = "NOT_A_FILE_ITEM"
	CodeInvalidFilename = "INVALID_FILENAME"
	CodeInvalidItemID   = "INVALID_ITEM_ID"
	CodeInvalidPayload  = "INVALID_PAYLOAD"

	// Item codes
	CodeItemNotFound = "ITEM_NOT_FOUND"
	CodeItemConflict = "ITEM_CONFLICT"

	// Store codes
	CodeHeadFailed      = "HEAD_FAILED"
	CodeCopyFailed      = "COPY_FAILED"
	CodeDeleteFailed    = "DELETE_FAILED"
	CodeAuthorizeFailed = "AUTHORIZE_FAILED"

	// Config codes
	CodeMissingBucket = "MISSING_BUCKET"
	CodeInvalidConfig = "INVALID_CONFIG"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// FilehookError is the structured error type used throughout the system.
type FilehookError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *FilehookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *FilehookError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *FilehookError) Is(target error) bool {
	var t *FilehookError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new FilehookError.
func New(category ErrorCategory, code, message string) *FilehookError {
	return &FilehookError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new FilehookError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *FilehookError {
	return &FilehookError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *FilehookError) WithDetails(details map[string]interface{}) *FilehookError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
// The flag is advisory: no component in this system retries on its own.
func IsRetryable(err error) bool {
	var fe *FilehookError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a FilehookError.
func GetCategory(err error) ErrorCategory {
	var fe *FilehookError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a FilehookError.
func GetCode(err error) string {
	var fe *FilehookError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// isRetryable marks codes whose underlying remote failure may be transient.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStore && code == CodeHeadFailed:
		return true
	case category == ErrCategoryStore && code == CodeCopyFailed:
		return true
	case category == ErrCategoryStore && code == CodeAuthorizeFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *FilehookError {
	return New(ErrCategoryValidation, code, message)
}

func NewItemError(code, message string) *FilehookError {
	return New(ErrCategoryItem, code, message)
}

func NewStoreError(code, message string, cause error) *FilehookError {
	return Wrap(ErrCategoryStore, code, message, cause)
}

func NewConfigError(code, message string) *FilehookError {
	return New(ErrCategoryConfig, code, message)
}

func NewInternalError(message string, cause error) *FilehookError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
