package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Configuration errors
	ErrorTypeInvalidConfiguration ErrorType = "invalid_configuration"
	ErrorTypeNotFound             ErrorType = "not_found"

	// Collaborator errors
	ErrorTypeResizeFailure ErrorType = "resize_failure"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeCache         ErrorType = "cache"

	// System errors
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error codes for specific scenarios
const (
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeResizeFailure        = "RESIZE_FAILURE"
	CodeNotFound             = "NOT_FOUND"
	CodeStorage              = "STORAGE_ERROR"
	CodeCache                = "CACHE_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	InnerError error                  `json:"-"`
	Stack      []string               `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Type)
	}
	if e.InnerError != nil {
		return msg + ": " + e.InnerError.Error()
	}
	return msg
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// WithMessage adds a message to the error
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithCode adds a code to the error
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHTTPStatus sets the HTTP status code
func (e *AppError) WithHTTPStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// WithStack captures the call stack
func (e *AppError) WithStack() *AppError {
	e.Stack = captureStack(3)
	return e
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	if targetApp, ok := target.(*AppError); ok {
		return e.Type == targetApp.Type
	}
	return false
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    string(errType),
	}
}

// FromError converts a standard error to AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       ErrorTypeUnknown,
		Code:       string(ErrorTypeUnknown),
		InnerError: err,
	}
}

// WrapWithType wraps an error with a specific type
func WrapWithType(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		InnerError: err,
		Code:       string(errType),
	}
}

// NewInvalidConfiguration reports a configuration value that cannot be used.
func NewInvalidConfiguration(field string, value interface{}, reason string) *AppError {
	return New(ErrorTypeInvalidConfiguration, fmt.Sprintf("invalid %s %v: %s", field, value, reason)).
		WithCode(CodeInvalidConfiguration).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewResizeFailure wraps an error returned by a resizer.
func NewResizeFailure(err error, width, height int) *AppError {
	return WrapWithType(err, ErrorTypeResizeFailure, "resize failed").
		WithCode(CodeResizeFailure).
		WithDetail("width", width).
		WithDetail("height", height).
		WithHTTPStatus(http.StatusBadGateway)
}

func NewNotFound(resource string, id interface{}) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource)).
		WithCode(CodeNotFound).
		WithDetail("resource", resource).
		WithDetail("id", id).
		WithHTTPStatus(http.StatusNotFound)
}

func NewStorage(err error, message string) *AppError {
	return WrapWithType(err, ErrorTypeStorage, message).
		WithCode(CodeStorage).
		WithHTTPStatus(http.StatusInternalServerError)
}

func NewCache(err error, message string) *AppError {
	return WrapWithType(err, ErrorTypeCache, message).
		WithCode(CodeCache).
		WithHTTPStatus(http.StatusInternalServerError)
}

func NewInternal(message string) *AppError {
	return New(ErrorTypeInternal, message).
		WithCode(CodeInternalError).
		WithHTTPStatus(http.StatusInternalServerError)
}

// HasType reports whether any error in err's chain is an AppError of errType.
func HasType(err error, errType ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Type == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsInvalidConfiguration reports whether err stems from an invalid configuration.
func IsInvalidConfiguration(err error) bool {
	return HasType(err, ErrorTypeInvalidConfiguration)
}

// IsResizeFailure reports whether err was raised by a resizer.
func IsResizeFailure(err error) bool {
	return HasType(err, ErrorTypeResizeFailure)
}

// HTTPErrorResponse represents an HTTP error response
type HTTPErrorResponse struct {
	HTTPStatus int           `json:"-"`
	Error      ErrorResponse `json:"error"`
}

// ErrorResponse represents the error part of an HTTP response
type ErrorResponse struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToHTTPResponse converts an error to an HTTP response
func ToHTTPResponse(err error) HTTPErrorResponse {
	appErr := FromError(err)

	response := HTTPErrorResponse{
		Error: ErrorResponse{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Error(),
			Details: appErr.Details,
		},
		HTTPStatus: appErr.HTTPStatus,
	}
	if response.HTTPStatus == 0 {
		response.HTTPStatus = statusFor(appErr.Type)
	}

	return response
}

// statusFor is the status of errors created without one, e.g. by
// WrapWithType.
func statusFor(t ErrorType) int {
	switch t {
	case ErrorTypeInvalidConfiguration:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeResizeFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// captureStack captures the call stack
func captureStack(skip int) []string {
	var stack []string
	for i := skip; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		funcName := fn.Name()
		if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
			funcName = funcName[idx+1:]
		}

		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, funcName))
	}
	return stack
}
