package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("get and set", func(t *testing.T) {
		s := New[string, int]()

		_, ok := s.Get("missing")
		assert.False(t, ok)

		s.Set("a", 1)
		val, ok := s.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, val)
	})

	t.Run("get or compute", func(t *testing.T) {
		s := New[uint64, string]()
		calls := 0

		val := s.GetOrCompute(7, func() string {
			calls++
			return "computed"
		})
		assert.Equal(t, "computed", val)

		val = s.GetOrCompute(7, func() string {
			calls++
			return "recomputed"
		})
		assert.Equal(t, "computed", val)
		assert.Equal(t, 1, calls)
	})

	t.Run("clear and len", func(t *testing.T) {
		s := New[string, int]()
		s.Set("a", 1)
		s.Set("b", 2)
		assert.Equal(t, 2, s.Len())

		s.Clear()
		assert.Zero(t, s.Len())
	})

	t.Run("delete", func(t *testing.T) {
		s := New[string, int]()
		s.Set("a", 1)
		s.Delete("a")
		_, ok := s.Get("a")
		assert.False(t, ok)
	})
}
