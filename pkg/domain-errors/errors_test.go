package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("wrapped code is discoverable", func(t *testing.T) {
		base := errors.New("db down")
		err := fmt.Errorf("register: %w", Wrap(base, CodeInternal, "failed to save batch"))

		assert.True(t, HasCode(err, CodeInternal))
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "failed to save batch", MessageOf(err))
	})

	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "quantity must be positive")
		outer := Wrap(inner, CodeValidation, "invalid batch")

		code, ok := CodeOf(outer)
		assert.True(t, ok)
		assert.Equal(t, CodeValidation, code)
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		_, ok := CodeOf(errors.New("boom"))
		assert.False(t, ok)
		assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
	})

	t.Run("wrap nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})
}
