package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{name: "validation", err: Validation("bad"), expected: http.StatusBadRequest},
		{name: "unauthenticated", err: Unauthenticated("no token"), expected: http.StatusUnauthorized},
		{name: "invalid credentials", err: ErrInvalidCredentials, expected: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("nope"), expected: http.StatusForbidden},
		{name: "not found", err: NotFound("missing"), expected: http.StatusNotFound},
		{name: "invalid state", err: InvalidState("not pending"), expected: http.StatusBadRequest},
		{name: "duplicate email", err: ErrDuplicateEmail, expected: http.StatusBadRequest},
		{name: "already delivered", err: ErrAlreadyDelivered, expected: http.StatusBadRequest},
		{name: "internal", err: Internal("boom", errors.New("db down")), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.HTTPStatus())
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("create purchase order: %w", &Error{Kind: KindConflict, Code: CodeAlreadyHasPO, Message: "custom"})

	assert.True(t, errors.Is(wrapped, ErrAlreadyHasPO))
	assert.False(t, errors.Is(wrapped, ErrAlreadyDelivered))
}

func TestAsAndKindOf(t *testing.T) {
	appErr, ok := As(fmt.Errorf("outer: %w", NotFound("Request not found")))
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.Equal(t, KindNotFound, KindOf(appErr))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load request", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load request: connection refused", err.Error())
}
