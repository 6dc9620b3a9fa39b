package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_StatusAndCode(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   string
	}{
		{NewValidation("bad"), http.StatusBadRequest, CodeValidation},
		{NewBadRequest(CodeSelfDelete, "no"), http.StatusBadRequest, CodeSelfDelete},
		{NewUnauthenticated("who"), http.StatusUnauthorized, CodeUnauthenticated},
		{NewInvalidCredentials(), http.StatusUnauthorized, CodeInvalidCredentials},
		{NewForbidden("no"), http.StatusForbidden, CodeForbidden},
		{NewNotFound("Client"), http.StatusNotFound, CodeNotFound},
		{NewReferenceNotFound(CodeClientNotFound, "Client not found"), http.StatusNotFound, CodeClientNotFound},
		{NewDuplicate("taken", "username"), http.StatusConflict, CodeDuplicate},
		{NewConflict(CodeInUse, "in use"), http.StatusConflict, CodeInUse},
		{NewConcurrentModification("Client"), http.StatusPreconditionFailed, CodeVersionMismatch},
		{NewInternal("boom", nil), http.StatusInternalServerError, CodeServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status, tc.err.Error())
		assert.Equal(t, tc.code, tc.err.Code, tc.err.Error())
	}
}

func TestGet_UnwrapsWrappedErrors(t *testing.T) {
	base := NewNotFound("Machine")
	wrapped := fmt.Errorf("loading machine: %w", base)

	assert.Same(t, base, Get(wrapped))
	assert.True(t, Is(wrapped, TypeNotFound))
	assert.False(t, Is(wrapped, TypeConflict))
	assert.Nil(t, Get(errors.New("plain")))
}

func TestWithCause_KeepsChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal("save failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNewDuplicate_FieldDetail(t *testing.T) {
	err := NewDuplicate("Email already exists", "email")
	assert.Equal(t, []FieldError{{Field: "email", Message: "Email already exists"}}, err.Details)

	assert.Empty(t, NewDuplicate("dup", "").Details)
}
