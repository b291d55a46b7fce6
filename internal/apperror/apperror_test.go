package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeKind(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
	}{
		{CodeInvalidInput, KindValidation},
		{CodeEventNotFound, KindNotFound},
		{CodeUserNotFound, KindNotFound},
		{CodeRegistrationNotFound, KindNotFound},
		{CodeEventFull, KindConflict},
		{CodeAlreadyRegistered, KindConflict},
		{CodeEmailTaken, KindConflict},
		{CodeStillReferenced, KindConflict},
		{CodePastEvent, KindInvalidState},
		{CodeUnavailable, KindTransient},
		{CodeInternal, KindInternal},
		{Code("SOMETHING_ELSE"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.code.Kind())
		})
	}
}

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindInvalidState.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, KindTransient.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("admit: %w", New(CodeEventFull, "no seats left"))

	require.True(t, errors.Is(err, ErrEventFull))
	require.False(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeUnavailable, "store unavailable", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable: connection reset", err.Error())
	assert.Equal(t, KindTransient, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindValidation, KindOf(Invalid("bad", map[string]string{"name": "required"})))
}
