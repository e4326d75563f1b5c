package api

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a panel error.
type ErrorType string

const (
	ErrorTypeTransport      ErrorType = "transport_error"
	ErrorTypeTimeout        ErrorType = "transport_timeout"
	ErrorTypeAuthentication ErrorType = "authentication_error"
	ErrorTypeDecode         ErrorType = "decode_error"
	ErrorTypeBusiness       ErrorType = "business_failure"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeUnsupported    ErrorType = "unsupported"
)

// APIError is the single error type returned by panel operations. Callers
// branch on Type; Status carries the HTTP status when one was received.
type APIError struct {
	Type    ErrorType `json:"type"`
	Backend Kind      `json:"backend,omitempty"`
	Op      string    `json:"op,omitempty"`
	Status  int       `json:"status,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`

	// Err is the underlying cause (network error, JSON syntax error).
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	prefix := string(e.Type)
	if e.Backend != "" {
		prefix = string(e.Backend) + " " + prefix
	}
	if e.Op != "" {
		prefix += " (" + e.Op + ")"
	}
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.Status)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", prefix, msg, e.Param)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a caller may retry the failed call. Only
// transport-level failures qualify; the caller must still restrict retries
// to idempotent reads.
func (e *APIError) Retryable() bool {
	return e.Type == ErrorTypeTransport || e.Type == ErrorTypeTimeout
}

// WithOp returns a copy of e annotated with backend kind and operation name.
func (e *APIError) WithOp(kind Kind, op string) *APIError {
	c := *e
	if c.Backend == "" {
		c.Backend = kind
	}
	if c.Op == "" {
		c.Op = op
	}
	return &c
}

// IsType reports whether err is (or wraps) an *APIError of type t.
func IsType(err error, t ErrorType) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == t
	}
	return false
}

// AsAPIError extracts the *APIError from err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// NewTransportError creates an APIError for network or connection failures.
func NewTransportError(message string, cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     cause,
	}
}

// NewTimeoutError creates an APIError for calls that exceeded their deadline.
func NewTimeoutError(message string, cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeTimeout,
		Message: message,
		Err:     cause,
	}
}

// NewAuthenticationError creates an APIError for rejected credentials or tokens.
func NewAuthenticationError(status int, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeAuthentication,
		Status:  status,
		Message: message,
	}
}

// NewDecodeError creates an APIError for responses that do not match the
// expected shape. Param names the offending field when known.
func NewDecodeError(param, message string, cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeDecode,
		Param:   param,
		Message: message,
		Err:     cause,
	}
}

// NewBusinessError creates an APIError for requests the backend executed
// but rejected (duplicate user, unknown node).
func NewBusinessError(status int, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeBusiness,
		Status:  status,
		Message: message,
	}
}

// NewInvalidRequestError creates an APIError for invalid call parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewUnsupportedError creates an APIError for operations a backend does not expose.
func NewUnsupportedError(kind Kind, op string) *APIError {
	return &APIError{
		Type:    ErrorTypeUnsupported,
		Backend: kind,
		Op:      op,
		Message: fmt.Sprintf("%s does not support %s", kind, op),
	}
}
