package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/checkup/internal/core/checklist"
)

func TestItemStoreLoad(t *testing.T) {
	t.Run("loads items preserving order", func(t *testing.T) {
		s := NewItemStore()
		require.NoError(t, s.Load(fixtureChecklist().Items))

		items := s.Items()
		require.Len(t, items, 4)
		assert.Equal(t, "perf-1", items[0].ID)
		assert.Equal(t, "seo-2", items[3].ID)
	})

	t.Run("rejects duplicate ids without modifying store", func(t *testing.T) {
		s := NewItemStore()
		require.NoError(t, s.Load(fixtureChecklist().Items))

		dup := []checklist.Item{
			{ID: "a", Title: "one"},
			{ID: "a", Title: "two"},
		}
		err := s.Load(dup)
		require.ErrorIs(t, err, checklist.ErrDuplicateID)
		assert.Equal(t, 4, s.Len())
	})

	t.Run("load bumps version and notifies", func(t *testing.T) {
		s := NewItemStore()
		calls := 0
		s.OnChange(func() { calls++ })

		before := s.Version()
		require.NoError(t, s.Load(fixtureChecklist().Items))

		assert.Greater(t, s.Version(), before)
		assert.Equal(t, 1, calls)
	})
}

func TestItemStoreGet(t *testing.T) {
	s := NewItemStore()
	require.NoError(t, s.Load(fixtureChecklist().Items))

	it, err := s.Get("seo-1")
	require.NoError(t, err)
	assert.Equal(t, "Add meta descriptions", it.Title)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, checklist.ErrNotFound)
}

func TestItemStoreApplyPatch(t *testing.T) {
	newLoaded := func(t *testing.T) *ItemStore {
		t.Helper()
		s := NewItemStore()
		require.NoError(t, s.Load(fixtureChecklist().Items))
		return s
	}

	t.Run("toggle derives completed_at", func(t *testing.T) {
		s := newLoaded(t)
		fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return fixed }

		it, err := s.ApplyPatch("perf-1", checklist.TogglePatch())
		require.NoError(t, err)
		assert.True(t, it.IsCompleted)
		require.NotNil(t, it.CompletedAt)
		assert.Equal(t, fixed, *it.CompletedAt)

		it, err = s.ApplyPatch("perf-1", checklist.TogglePatch())
		require.NoError(t, err)
		assert.False(t, it.IsCompleted)
		assert.Nil(t, it.CompletedAt)
	})

	t.Run("unknown item", func(t *testing.T) {
		s := newLoaded(t)
		_, err := s.ApplyPatch("nope", checklist.TogglePatch())
		assert.ErrorIs(t, err, checklist.ErrNotFound)
	})

	t.Run("notifies observers in registration order", func(t *testing.T) {
		s := newLoaded(t)
		var order []string
		s.OnChange(func() { order = append(order, "first") })
		s.OnChange(func() { order = append(order, "second") })

		_, err := s.ApplyPatch("perf-1", checklist.NotesPatch("wip"))
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("items returns copies", func(t *testing.T) {
		s := newLoaded(t)
		items := s.Items()
		items[0].Title = "mutated"

		it, err := s.Get("perf-1")
		require.NoError(t, err)
		assert.Equal(t, "Compress hero images", it.Title)
	})
}

func TestItemStoreReplace(t *testing.T) {
	s := NewItemStore()
	require.NoError(t, s.Load(fixtureChecklist().Items))

	it, err := s.Get("perf-2")
	require.NoError(t, err)
	it.Notes = "replaced from remote"
	require.NoError(t, s.Replace(it))

	got, err := s.Get("perf-2")
	require.NoError(t, err)
	assert.Equal(t, "replaced from remote", got.Notes)

	// Position is kept.
	assert.Equal(t, "perf-2", s.Items()[1].ID)

	err = s.Replace(checklist.Item{ID: "ghost"})
	assert.ErrorIs(t, err, checklist.ErrNotFound)
}
