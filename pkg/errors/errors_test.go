package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{New(ErrCodeNoCopiesAvailable, "x"), http.StatusBadRequest},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusForbidden},
		{ErrBookNotFound, http.StatusNotFound},
		{ErrEmailDuplicate, http.StatusConflict},
		{ErrDatabaseError, http.StatusInternalServerError},
		{New(123, "bogus"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.err.Error())
	}
}

func TestGetAppError(t *testing.T) {
	t.Run("wrapped AppError is found", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", ErrBookNotFound)
		assert.Same(t, ErrBookNotFound, GetAppError(err))
		assert.True(t, IsAppError(err))
		assert.True(t, HasCode(err, ErrCodeBookNotFound))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		raw := errors.New("boom")
		appErr := GetAppError(raw)
		assert.Equal(t, ErrCodeInternal, appErr.Code)
		assert.ErrorIs(t, appErr, raw)
		assert.False(t, IsAppError(raw))
	})
}

func TestWithMessageDoesNotMutateShared(t *testing.T) {
	custom := ErrBookNotFound.WithMessagef("Book with ID %d not found", 7)
	assert.Equal(t, "Book with ID 7 not found", custom.Message)
	assert.Equal(t, "Book not found", ErrBookNotFound.Message)
	assert.Equal(t, ErrCodeBookNotFound, custom.Code)
}
