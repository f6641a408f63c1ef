package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrCORSBlocked = errors.New("request blocked by CORS policy")
	ErrValidation  = errors.New("validation failed")
)

// Body decoding
var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMaxBodySizeExceeded  = errors.New("max body size exceeded")
	ErrInvalidJSON          = errors.New("invalid JSON")
)

// ApiErr is an error that knows how it is rendered to the client: the
// status code, the message, and the field it concerns if any.
type ApiErr struct {
	StatusCode int
	err        error
	Details    string // shown to the client below 500
	Field      string
	Cause      error // logged, never shown
}

func NewApiErr(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: statusCode,
		err:        errors.New(message),
	}
}

func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// Message is the client facing text of the error, without details.
func (e *ApiErr) Message() string {
	return e.err.Error()
}

// GetFullError follows the Cause chain, for logs.
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause == nil {
		return msg
	}
	var inner *ApiErr
	if errors.As(e.Cause, &inner) {
		return msg + " -> " + inner.GetFullError()
	}
	return msg + " -> " + e.Cause.Error()
}

// Unwrap exposes the sentinel, so errors.Is(err, ErrNotFound) and friends
// work on an *ApiErr.
func (e *ApiErr) Unwrap() error {
	return e.err
}

// Type is the human readable error category written into the error envelope.
func (e *ApiErr) Type() string {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return "Validation Error"
	case http.StatusUnauthorized:
		return "Authentication Failed"
	case http.StatusForbidden:
		return "Permission Denied"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusRequestEntityTooLarge:
		return "Payload Too Large"
	case http.StatusUnsupportedMediaType:
		return "Unsupported Media Type"
	case http.StatusTooManyRequests:
		return "Throttled"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	}
	if e.StatusCode >= 500 {
		return "Server Error"
	}
	return http.StatusText(e.StatusCode)
}

func NewNotFoundError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: errors.New(message)}
}

func NewForbiddenError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusForbidden, err: errors.New(message)}
}

func NewInternalError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: errors.New(message)}
}

func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        errors.New(message),
		Cause:      cause,
	}
}

// NewValidationError reports a field level validation failure. The message is
// shown to the client as is.
func NewValidationError(field, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New(message),
		Field:      field,
		Cause:      ErrValidation,
	}
}

func IsNotFound(err error) bool {
	var apiErr *ApiErr
	return errors.Is(err, ErrNotFound) || (errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound)
}

func IsValidation(err error) bool {
	var apiErr *ApiErr
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

func NewCORSError(origin string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrCORSBlocked,
		Details:    fmt.Sprintf("Origin '%s' is not allowed", origin),
	}
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

// NewUnsupportedMediaTypeError rejects a body whose Content-Type the endpoint
// cannot read.
func NewUnsupportedMediaTypeError(contentType string, allowedTypes []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedMediaType,
		Details:    fmt.Sprintf("Unsupported media type %q in request. Allowed types: %v", contentType, allowedTypes),
		Field:      "content_type",
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body is larger than %d bytes", maxSize),
		Field:      "body_size",
	}
}

func NewInvalidJSONError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidJSON,
		Details:    "Invalid JSON format",
		Cause:      cause,
		Field:      "json",
	}
}
