package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCorrect(t *testing.T) {
	t.Run("a target selection is correct", func(t *testing.T) {
		assert.True(t, isCorrect([]string{"target_bank.n.01"}))
	})

	t.Run("a trap selection is incorrect", func(t *testing.T) {
		assert.False(t, isCorrect([]string{"trap_brisk.a.01"}))
	})

	t.Run("a filler selection is incorrect", func(t *testing.T) {
		assert.False(t, isCorrect([]string{"filler_quick.a.01"}))
	})

	t.Run("the unknown option is incorrect", func(t *testing.T) {
		assert.False(t, isCorrect([]string{"unknown_option"}))
	})

	t.Run("no selection is incorrect", func(t *testing.T) {
		assert.False(t, isCorrect(nil))
	})

	t.Run("unknown mixed with a target is still incorrect", func(t *testing.T) {
		assert.False(t, isCorrect([]string{"target_bank.n.01", "unknown_option"}))
	})
}
