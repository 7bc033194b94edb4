package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("an *Error reports its own kind", func(t *testing.T) {
		err := New(Validation, "bad input")
		assert.Equal(t, Validation, KindOf(err))
	})

	t.Run("a wrapped *Error still resolves through Unwrap", func(t *testing.T) {
		err := Wrap(NotFound, "missing row", errors.New("sql: no rows"))
		assert.Equal(t, NotFound, KindOf(err))
	})

	t.Run("a plain error defaults to internal", func(t *testing.T) {
		assert.Equal(t, Internal, KindOf(errors.New("boom")))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Run("without a wrapped cause", func(t *testing.T) {
		err := New(Conflict, "already exists")
		assert.Equal(t, "conflict: already exists", err.Error())
	})

	t.Run("with a wrapped cause appended", func(t *testing.T) {
		err := Wrap(Internal, "query failed", errors.New("timeout"))
		assert.Contains(t, err.Error(), "timeout")
	})
}
