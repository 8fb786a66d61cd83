package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeAndMatches(t *testing.T) {
	err := Clone(ErrConsultationFull, "consultation c-1 is full")
	assert.Equal(t, "consultation c-1 is full", err.Message)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrConsultationFull))
	assert.False(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, "internal server error: boom", appErr.Error())
	assert.Nil(t, FromError(nil))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "flush failed")
	assert.ErrorIs(t, err, cause)
}
