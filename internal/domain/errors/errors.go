package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrThrottled          = errors.New("too many requests")
)

// Verification code and deletion lifecycle errors
var (
	ErrCodeNotFound    = errors.New("no verification code outstanding")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeLocked      = errors.New("verification code locked after too many attempts")
	ErrCodeIncorrect   = errors.New("verification code incorrect")
	ErrNotVerified     = errors.New("verification code not verified")
	ErrNotPending      = errors.New("account is not pending deletion")
	ErrDeletionPending = errors.New("account is already pending deletion")
	ErrDeliveryFailure = errors.New("notification delivery failed")
)

// IncorrectCodeError is returned for a mismatched code that still has attempts left.
type IncorrectCodeError struct {
	Remaining int
}

func (e *IncorrectCodeError) Error() string {
	return fmt.Sprintf("%s: %d attempt(s) remaining", ErrCodeIncorrect.Error(), e.Remaining)
}

func (e *IncorrectCodeError) Is(target error) bool {
	return target == ErrCodeIncorrect
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation. It matches ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Error codes exposed to API clients
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeVerificationNotFound = "VERIFICATION_CODE_NOT_FOUND"
	CodeVerificationExpired  = "VERIFICATION_CODE_EXPIRED"
	CodeVerificationLocked   = "VERIFICATION_CODE_LOCKED"
	CodeVerificationWrong    = "VERIFICATION_CODE_INCORRECT"
	CodeVerificationRequired = "VERIFICATION_REQUIRED"
	CodeNotPendingDeletion   = "NOT_PENDING_DELETION"
	CodeDeletionPending      = "DELETION_ALREADY_PENDING"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests, message, ErrThrottled)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// FromDomain maps a domain error to an AppError with an actionable message.
// Errors that are already AppErrors are returned unchanged.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var incorrect *IncorrectCodeError
	switch {
	case errors.As(err, &incorrect):
		return NewAppError(http.StatusBadRequest, CodeVerificationWrong,
			fmt.Sprintf("Incorrect code. %d attempt(s) remaining.", incorrect.Remaining), err)
	case errors.Is(err, ErrCodeNotFound):
		return NewAppError(http.StatusNotFound, CodeVerificationNotFound,
			"No verification code is outstanding. Request a new code.", err)
	case errors.Is(err, ErrCodeExpired):
		return NewAppError(http.StatusGone, CodeVerificationExpired,
			"The verification code has expired. Request a new code.", err)
	case errors.Is(err, ErrCodeLocked):
		return NewAppError(http.StatusTooManyRequests, CodeVerificationLocked,
			"Too many incorrect attempts. Request a new code.", err)
	case errors.Is(err, ErrNotVerified):
		return NewAppError(http.StatusForbidden, CodeVerificationRequired,
			"Verify the emailed code first. Restart the flow if you no longer have it.", err)
	case errors.Is(err, ErrNotPending):
		return NewAppError(http.StatusConflict, CodeNotPendingDeletion,
			"The account is not pending deletion.", err)
	case errors.Is(err, ErrDeletionPending):
		return NewAppError(http.StatusConflict, CodeDeletionPending,
			"The account is already scheduled for deletion.", err)
	case errors.Is(err, ErrThrottled):
		return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests,
			"A code was sent recently. Wait a moment before requesting another.", err)
	case errors.Is(err, ErrEmailNotVerified):
		return NewAppError(http.StatusForbidden, CodeEmailNotVerified,
			"Confirm your email address before logging in.", err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials.", err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, "Resource already exists.", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "Resource not found.", err)
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Token expired. Log in again.", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized.", err)
	default:
		return InternalError(err)
	}
}
