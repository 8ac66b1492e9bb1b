package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"

	// Template errors, one per phase that runs author code
	ErrTemplateDiscovery ErrorCode = "TEMPLATE_DISCOVERY"
	ErrTemplateSetup     ErrorCode = "TEMPLATE_SETUP"
	ErrTemplateRouting   ErrorCode = "TEMPLATE_ROUTING"
	ErrTemplateRender    ErrorCode = "TEMPLATE_RENDER"
	ErrScript            ErrorCode = "SCRIPT"

	// Environment outcomes. These are normal terminations, not failures.
	ErrNoWorkspace ErrorCode = "NO_WORKSPACE"
	ErrNoTemplates ErrorCode = "NO_TEMPLATES"
	ErrNoSelection ErrorCode = "NO_SELECTION"
	ErrAborted     ErrorCode = "ABORTED"

	// Interaction errors
	ErrPrompt ErrorCode = "PROMPT"
)

// PigError represents a structured error with code and details
type PigError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PigError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PigError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PigError) Is(target error) bool {
	var targetErr *PigError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PigError with the given code and message
func New(code ErrorCode, message string) *PigError {
	return &PigError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PigError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PigError {
	return &PigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PigError
func Wrap(err error, code ErrorCode, message string) *PigError {
	if err == nil {
		return nil
	}
	return &PigError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PigError {
	if err == nil {
		return nil
	}
	return &PigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PigError) WithDetail(key string, value interface{}) *PigError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PigError) WithDetails(details map[string]interface{}) *PigError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var pigErr *PigError
	if errors.As(err, &pigErr) {
		return pigErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PigError
func GetErrorCode(err error) ErrorCode {
	var pigErr *PigError
	if errors.As(err, &pigErr) {
		return pigErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PigError
func GetErrorDetails(err error) map[string]interface{} {
	var pigErr *PigError
	if errors.As(err, &pigErr) {
		return pigErr.Details
	}
	return nil
}

// IsOutcome reports whether err is one of the environment outcomes (no
// workspace, no templates, no selection, aborted) that end a run without
// being a failure.
func IsOutcome(err error) bool {
	switch GetErrorCode(err) {
	case ErrNoWorkspace, ErrNoTemplates, ErrNoSelection, ErrAborted:
		return true
	}
	return false
}

// ScriptError is an exception thrown by author-supplied script code.
// Stack is empty when the engine produced no trace (syntax errors).
type ScriptError struct {
	Message string
	Stack   string
}

// Error implements the error interface
func (e *ScriptError) Error() string {
	return e.Message
}

// AsScriptError finds the script exception in an error chain
func AsScriptError(err error) (*ScriptError, bool) {
	var scriptErr *ScriptError
	if errors.As(err, &scriptErr) {
		return scriptErr, true
	}
	return nil, false
}
