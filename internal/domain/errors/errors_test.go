package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeBadRequest, "bad", ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeBadRequest, err.Code)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, ErrBadRequest.Error(), err.Error())

	notFound := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, CodeNotFound, notFound.Code)

	conflict := Conflict("exists")
	assert.Equal(t, http.StatusConflict, conflict.Status)
	assert.Equal(t, CodeConflict, conflict.Code)

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, CodeInternalError, internal.Code)

	custom := NewError("custom", ErrForbidden)
	assert.Equal(t, ErrForbidden.Error(), custom.Error())
	assert.True(t, stderrors.Is(custom, ErrForbidden))

	badReq := BadRequest("bad request")
	assert.Equal(t, http.StatusBadRequest, badReq.Status)
	assert.Equal(t, CodeInvalidInput, badReq.Code)

	unauth := Unauthorized("unauthorized")
	assert.Equal(t, http.StatusUnauthorized, unauth.Status)
	assert.Equal(t, CodeUnauthorized, unauth.Code)

	forbidden := Forbidden("forbidden")
	assert.Equal(t, http.StatusForbidden, forbidden.Status)
	assert.Equal(t, CodeForbidden, forbidden.Code)

	tooMany := TooManyRequests("slow down")
	assert.Equal(t, http.StatusTooManyRequests, tooMany.Status)
	assert.Equal(t, CodeTooManyRequests, tooMany.Code)

	internalMsg := InternalServerError("boom")
	assert.Equal(t, http.StatusInternalServerError, internalMsg.Status)
	assert.Equal(t, "boom", internalMsg.Message)
	assert.Equal(t, "boom", internalMsg.Error())
}

func TestIncorrectCodeError(t *testing.T) {
	err := fmt.Errorf("verify: %w", &IncorrectCodeError{Remaining: 3})

	assert.True(t, stderrors.Is(err, ErrCodeIncorrect))
	assert.False(t, stderrors.Is(err, ErrCodeLocked))

	var incorrect *IncorrectCodeError
	assert.True(t, stderrors.As(err, &incorrect))
	assert.Equal(t, 3, incorrect.Remaining)
	assert.Contains(t, err.Error(), "3 attempt(s) remaining")
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"incorrect", &IncorrectCodeError{Remaining: 2}, http.StatusBadRequest, CodeVerificationWrong},
		{"not found", ErrCodeNotFound, http.StatusNotFound, CodeVerificationNotFound},
		{"expired", fmt.Errorf("wrapped: %w", ErrCodeExpired), http.StatusGone, CodeVerificationExpired},
		{"locked", ErrCodeLocked, http.StatusTooManyRequests, CodeVerificationLocked},
		{"not verified", ErrNotVerified, http.StatusForbidden, CodeVerificationRequired},
		{"not pending", ErrNotPending, http.StatusConflict, CodeNotPendingDeletion},
		{"already pending", ErrDeletionPending, http.StatusConflict, CodeDeletionPending},
		{"throttled", ErrThrottled, http.StatusTooManyRequests, CodeTooManyRequests},
		{"email not verified", ErrEmailNotVerified, http.StatusForbidden, CodeEmailNotVerified},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"exists", ErrAlreadyExists, http.StatusConflict, CodeConflict},
		{"missing", ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"invalid", ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.code, appErr.Code)
			assert.NotEmpty(t, appErr.Message)
		})
	}

	existing := Forbidden("nope")
	assert.Same(t, existing, FromDomain(existing))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "username", Message: "too short"},
		{Field: "password", Message: "entirely numeric"},
	}}
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
	assert.Equal(t, "username: too short; password: entirely numeric", err.Error())
	assert.Equal(t, ErrInvalidInput.Error(), (&ValidationError{}).Error())

	appErr := FromDomain(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, CodeInvalidInput, appErr.Code)
}
