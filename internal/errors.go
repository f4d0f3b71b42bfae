package internal

import "errors"

// ErrNoUser is returned by operations that require a current user when
// none exists (no survey completed yet, or after a reset).
var ErrNoUser = errors.New("no user found")

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}
