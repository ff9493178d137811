package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeNoInput     ErrorType = "no_input"
	ErrorTypeFormat      ErrorType = "format"
	ErrorTypeDecoding    ErrorType = "decoding"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeConversion  ErrorType = "conversion"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypePermission  ErrorType = "permission"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeSystem      ErrorType = "system"
)

// AppError represents an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new application error
func NewError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNoInputError creates an error for a selection that resolved to no files
func NewNoInputError(message string, cause error) *AppError {
	return NewError(ErrorTypeNoInput, message, cause)
}

// NewFormatError creates an error for an input that is not a valid archive
func NewFormatError(message string, cause error) *AppError {
	return NewError(ErrorTypeFormat, message, cause)
}

// NewDecodingError creates an error for document content that is not valid UTF-8
func NewDecodingError(message string, cause error) *AppError {
	return NewError(ErrorTypeDecoding, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewError(ErrorTypeValidation, message, cause)
}

// NewIOError creates an I/O error
func NewIOError(message string, cause error) *AppError {
	return NewError(ErrorTypeIO, message, cause)
}

// NewConversionError creates a conversion error
func NewConversionError(message string, cause error) *AppError {
	return NewError(ErrorTypeConversion, message, cause)
}

// NewUnsupportedError creates an unsupported operation error
func NewUnsupportedError(message string, cause error) *AppError {
	return NewError(ErrorTypeUnsupported, message, cause)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the original type unless explicitly overridden
	var appErr *AppError
	if errors.As(err, &appErr) && errorType == "" {
		return &AppError{
			Type:    appErr.Type,
			Message: message + ": " + appErr.Message,
			Cause:   appErr.Cause,
			Context: appErr.Context,
		}
	}

	if errorType == "" {
		errorType = classifyError(err)
	}

	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// classifyError automatically classifies an error based on its content
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSystem
	}

	var pathErr *fs.PathError
	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case errors.Is(err, fs.ErrNotExist):
		return ErrorTypeNotFound
	case errors.As(err, &pathErr):
		return ErrorTypeIO
	case strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access denied"):
		return ErrorTypePermission
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return ErrorTypeNotFound
	case strings.Contains(errStr, "utf-8") || strings.Contains(errStr, "decode"):
		return ErrorTypeDecoding
	case strings.Contains(errStr, "zip") || strings.Contains(errStr, "archive"):
		return ErrorTypeFormat
	case strings.Contains(errStr, "convert"):
		return ErrorTypeConversion
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad"):
		return ErrorTypeValidation
	default:
		return ErrorTypeSystem
	}
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return classifyError(err)
}

// IsErrorType reports whether err carries the given type
func IsErrorType(err error, errorType ErrorType) bool {
	return err != nil && GetErrorType(err) == errorType
}

// ValidateUTF8 returns a decoding error naming the first invalid byte offset
func ValidateUTF8(content []byte) error {
	if utf8.Valid(content) {
		return nil
	}

	offset := 0
	for offset < len(content) {
		r, size := utf8.DecodeRune(content[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return NewDecodingError(fmt.Sprintf("invalid UTF-8 byte 0x%02x at offset %d", content[offset], offset), nil)
}
