package errs

import (
	"errors"
	"net/http"
)

var (
	Unauthorized       = NewApiErr(http.StatusUnauthorized, "Authentication credentials were not provided.")
	InvalidCredentials = NewApiErr(http.StatusUnauthorized, "Invalid credentials")
)

// Authentication & Authorization Errors
var (
	ErrMissingToken = errors.New("missing access token")
	ErrExpiredToken = errors.New("expired token")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrInactiveUser = errors.New("user is inactive or deleted")
)

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrMissingToken,
		Details:    "Authentication credentials were not provided",
		Field:      "authorization",
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrExpiredToken,
		Details:    "Token has expired",
		Field:      "authorization",
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidToken,
		Details:    "Token is invalid",
		Field:      "authorization",
	}
}

func NewRevokedTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrRevokedToken,
		Field:      "refresh",
	}
}

func NewInactiveUserError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInactiveUser,
		Field:      "authorization",
	}
}

// Authentication & Authorization Error Type Checkers
func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsRevokedTokenError(err error) bool {
	return errors.Is(err, ErrRevokedToken)
}
