package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodePersistence = "PERSISTENCE_ERROR"
	CodeUpload      = "UPLOAD_ERROR"

	CodeEmailInUse    = "EMAIL_IN_USE"
	CodeWeakPassword  = "WEAK_PASSWORD"
	CodeInvalidEmail  = "INVALID_EMAIL"
	CodeInvalidInvite = "INVALID_INVITE"
)

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// Validation is raised before any collaborator is called.
func Validation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func Persistence(message string, err error) *AppError {
	return &AppError{
		Code:    CodePersistence,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Upload(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUpload,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// Auth builds an identity-provider error carrying user-facing text for code.
func Auth(code string, err error) *AppError {
	switch code {
	case CodeEmailInUse:
		return New(code, "This email is already registered. Try logging in.", http.StatusConflict, err)
	case CodeWeakPassword:
		return New(code, "Password should be at least 6 characters.", http.StatusBadRequest, err)
	case CodeInvalidEmail:
		return New(code, "Please enter a valid email address.", http.StatusBadRequest, err)
	default:
		return New("AUTH_ERROR", "An error occurred. Please try again.", http.StatusInternalServerError, err)
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From returns the first AppError in err's chain.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
