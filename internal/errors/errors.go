package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is an application-specific error type
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// wraps an error with a code and message
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Coder is implemented by errors that carry an application error code
// without being an *AppError themselves.
type Coder interface {
	ErrorCode() string
}

// CodeOf returns the outermost application error code found in err's chain,
// or an empty string when none is present.
func CodeOf(err error) string {
	for err != nil {
		switch e := err.(type) {
		case *AppError:
			return e.Code
		case Coder:
			return e.ErrorCode()
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		switch e := err.(type) {
		case *AppError:
			if e.Code == code {
				return true
			}
		case Coder:
			if e.ErrorCode() == code {
				return true
			}
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Error code constants
const (
	CodeInternal   = "INTERNAL_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInvalidArg = "INVALID_ARGUMENT"
	CodeExternal   = "EXTERNAL_ERROR"
	CodeConflict   = "CONFLICT"         // Resource already exists (UNIQUE violation)
	CodeDependency = "DEPENDENCY_ERROR" // Foreign key constraint violation

	CodeNotAvailable     = "NOT_AVAILABLE"     // No transcript or captions exist for an item
	CodeGenerationFailed = "GENERATION_FAILED" // Model returned empty or unparseable output
	CodeTimeout          = "TIMEOUT"
	CodePublishFailed    = "PUBLISH_FAILED"
)
