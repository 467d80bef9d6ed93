// Package errors provides typed errors for jenkins-utils
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates a configuration error
	ErrConfig ErrorType = iota
	// ErrConnection indicates the Jenkins server could not be reached
	// or did not identify itself
	ErrConnection
	// ErrJobs indicates a job backup or restore failure
	ErrJobs
	// ErrCredentials indicates a credential could not be created
	ErrCredentials
	// ErrValidation indicates an input validation error
	ErrValidation
)

// ToolError is the base error type for all jenkins-utils errors
type ToolError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the error message
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("[%s] %s", errorTypeString(e.Type), e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " (" + strings.Join(pairs, ", ") + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// New creates a new ToolError
func New(errType ErrorType, message string, cause error) *ToolError {
	return &ToolError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *ToolError) WithContext(key string, value interface{}) *ToolError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var toolErr *ToolError
	if err == nil {
		return false
	}
	if errors.As(err, &toolErr) {
		return toolErr.Type == errType
	}
	return false
}

// ExitCode maps an error to a process exit code.
// Configuration and validation problems exit with 2 so scripts can tell
// a usage mistake from a server-side failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		return 1
	}

	switch toolErr.Type {
	case ErrConfig, ErrValidation:
		return 2
	default:
		return 1
	}
}

func errorTypeString(et ErrorType) string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrConnection:
		return "CONNECTION"
	case ErrJobs:
		return "JOBS"
	case ErrCredentials:
		return "CREDENTIALS"
	case ErrValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *ToolError {
	return New(ErrConfig, message, cause)
}

// ConnectionError creates a connection error
func ConnectionError(message string, cause error) *ToolError {
	return New(ErrConnection, message, cause)
}

// JobsError creates a job transfer error
func JobsError(message string, cause error) *ToolError {
	return New(ErrJobs, message, cause)
}

// CredentialsError creates a credential provisioning error
func CredentialsError(message string, cause error) *ToolError {
	return New(ErrCredentials, message, cause)
}

// ValidationError creates a validation error
func ValidationError(message string, cause error) *ToolError {
	return New(ErrValidation, message, cause)
}
