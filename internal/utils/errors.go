package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a domain error that knows which HTTP status it maps to.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so that errors built with a custom message still
// compare equal to the sentinel they were derived from.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(base *AppError, message string) *AppError {
	clone := *base
	if message != "" {
		clone.Message = message
	}
	return &clone
}

func WrapAppError(base *AppError, message string, err error) *AppError {
	clone := NewAppError(base, message)
	clone.Err = err
	return clone
}

func NewValidationError(details map[string]string) *AppError {
	clone := NewAppError(ErrValidation, "")
	clone.Details = details
	return clone
}

var (
	ErrValidation   = &AppError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: ErrMsgValidationFailed}
	ErrInvalidState = &AppError{Code: "INVALID_STATE", Status: http.StatusBadRequest, Message: "invalid state"}
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Status: http.StatusUnauthorized, Message: ErrMsgUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Status: http.StatusForbidden, Message: "forbidden"}
	ErrNotFound     = &AppError{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "not found"}
	ErrConflict     = &AppError{Code: "CONFLICT", Status: http.StatusConflict, Message: "conflict"}
	ErrInternal     = &AppError{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: ErrMsgInternalServer}
)

// FromError normalises any error into an *AppError.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return WrapAppError(ErrInternal, "", err)
}
