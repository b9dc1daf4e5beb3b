package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_SurvivesWrapping(t *testing.T) {
	base := NotFoundf("order %s not found", "ord010")
	wrapped := fmt.Errorf("cancel: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "order ord010 not found", Message(wrapped))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "boom", Message(err))
}

func TestRemote_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Remote(cause, "failed to create order for %s", "Desk Lamp")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create order for Desk Lamp: connection refused", err.Error())
	assert.Equal(t, "failed to create order for Desk Lamp", Message(err))
	assert.Equal(t, "remote", err.Kind.String())
}

func TestConfirmationRequired(t *testing.T) {
	err := ConfirmationRequired("clearing the cart")

	assert.Equal(t, KindConfirmationRequired, KindOf(err))
	assert.Equal(t, "clearing the cart requires confirmation", err.Error())
}

func TestConflictf(t *testing.T) {
	err := Conflictf("checkout already in progress")

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "conflict", KindOf(err).String())
}
