package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHierarchy(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.False(t, IsNotFoundError(ErrEmailExists))
	assert.False(t, IsDuplicateError(ErrUserNotFound))

	wrapped := fmt.Errorf("lookup: %w", ErrUserNotFound)
	assert.True(t, IsNotFoundError(wrapped))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("account", "create", "insert failed", cause)

	assert.Equal(t, "create operation on account failed: insert failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("user", "get", "no rows", nil)
	assert.Equal(t, "get operation on user failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
