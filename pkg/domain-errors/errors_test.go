package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeConflict, "duplicate payment")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := New(CodeGuardBlocked, "vigency closed")
		err := fmt.Errorf("create claim: %w", inner)
		assert.True(t, HasCode(err, CodeGuardBlocked))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "no such policy")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("driver: bad connection")))
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "payment insert failed")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestWithField(t *testing.T) {
	err := New(CodeGuardBlocked, "policy has arrears").WithField("arrears_count", 3)
	assert.Equal(t, 3, err.Fields["arrears_count"])

	// The original error is not mutated.
	base := New(CodeGuardBlocked, "policy has arrears")
	_ = base.WithField("arrears_count", 1)
	assert.Empty(t, base.Fields)
}
