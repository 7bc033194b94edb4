package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenseLemma(t *testing.T) {
	t.Run("splits the lemma from pos.nn suffix", func(t *testing.T) {
		s := Sense{ID: "bank.n.01"}
		assert.Equal(t, "bank", s.Lemma())
	})

	t.Run("a multi-word headword keeps its internal dots intact", func(t *testing.T) {
		s := Sense{ID: "state.of.the.art.a.01"}
		assert.Equal(t, "state.of.the.art", s.Lemma())
	})

	t.Run("an id without enough dot segments returns itself", func(t *testing.T) {
		s := Sense{ID: "malformed"}
		assert.Equal(t, "malformed", s.Lemma())
	})
}

func TestIsPrimarySense(t *testing.T) {
	assert.True(t, Sense{ID: "bank.n.01"}.IsPrimarySense())
	assert.False(t, Sense{ID: "bank.n.02"}.IsPrimarySense())
}

func TestJSONBRoundTrip(t *testing.T) {
	j := JSONB{"a": float64(1), "b": "two"}
	v, err := j.Value()
	assert.NoError(t, err)

	var out JSONB
	assert.NoError(t, out.Scan(v))
	assert.Equal(t, j, out)
}

func TestJSONBScanNil(t *testing.T) {
	var j JSONB
	assert.NoError(t, j.Scan(nil))
	assert.Nil(t, j)
}
