package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError.
const (
	CodeConfig         = "CONFIG_ERROR"
	CodeAuth           = "AUTH_ERROR"
	CodeTransport      = "TRANSPORT_ERROR"
	CodeService        = "SERVICE_ERROR"
	CodeAnalysisFailed = "ANALYSIS_FAILED"
	CodeTimeout        = "TIMEOUT"
	CodeIO             = "IO_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
)

// Common application errors
var (
	ErrConfig         = errors.New("invalid configuration")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTransport      = errors.New("transport error")
	ErrService        = errors.New("service error")
	ErrAnalysisFailed = errors.New("analysis failed")
	ErrTimeout        = errors.New("timed out")
	ErrIO             = errors.New("io error")
	ErrNotFound       = errors.New("resource not found")
	ErrDatabase       = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigErrorf builds a CONFIG_ERROR wrapping ErrConfig.
func ConfigErrorf(format string, args ...interface{}) error {
	return NewAppError(CodeConfig, fmt.Sprintf(format, args...), ErrConfig)
}

// IOError wraps a filesystem failure as IO_ERROR. The underlying error stays reachable via errors.Is/As.
func IOError(message string, err error) error {
	if err == nil {
		return nil
	}
	return NewAppError(CodeIO, message, fmt.Errorf("%w: %w", ErrIO, err))
}
