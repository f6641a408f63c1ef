package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// External Service Errors
var (
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrConfig             = errors.New("configuration error")
)

func NewRateLimitError(scope string, retryAfter time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        ErrRateLimit,
		Details:    fmt.Sprintf("Too many %s requests. Retry after %v", scope, retryAfter),
	}
}

func NewStorageUnavailableError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrStorageUnavailable,
		Details:    fmt.Sprintf("Image storage failed during %s", operation),
		Cause:      cause,
	}
}

// NewConfigError reports a setting that keeps the server from starting.
func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfig,
		Details:    fmt.Sprintf("invalid %s: %v", configName, cause),
		Cause:      cause,
	}
}

func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

func IsStorageUnavailableError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
