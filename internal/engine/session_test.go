package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/core/eventbus/testbus"
	"github.com/colonyops/checkup/internal/core/filter"
)

func openSession(t *testing.T, source *fakeSource) (*Session, *testbus.Bus) {
	t.Helper()
	bus := testbus.New(t)
	s, err := Open(context.Background(), source, "cl-1", bus.EventBus, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, bus
}

func TestOpen(t *testing.T) {
	t.Run("loads checklist and publishes event", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, bus := openSession(t, source)

		assert.Equal(t, 4, s.Store().Len())
		_, ok := bus.WaitFor(eventbus.EventChecklistLoaded, time.Second)
		assert.True(t, ok)
	})

	t.Run("unknown checklist", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		bus := testbus.New(t)
		_, err := Open(context.Background(), source, "ghost", bus.EventBus, zerolog.Nop())
		assert.ErrorIs(t, err, checklist.ErrNotFound)
	})

	t.Run("duplicate ids make the session unusable", func(t *testing.T) {
		cl := fixtureChecklist()
		cl.Items = append(cl.Items, cl.Items[0])
		source := newFakeSource(cl)
		bus := testbus.New(t)

		_, err := Open(context.Background(), source, "cl-1", bus.EventBus, zerolog.Nop())
		assert.ErrorIs(t, err, checklist.ErrDuplicateID)
	})
}

func TestSessionProjections(t *testing.T) {
	ctx := context.Background()

	t.Run("stats track toggles", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		assert.InDelta(t, 0.0, s.Stats().ProgressPercentage, 1e-9)

		_, err := s.ToggleItem(ctx, "perf-1")
		require.NoError(t, err)
		assert.InDelta(t, 25.0, s.Stats().ProgressPercentage, 1e-9)

		_, err = s.ToggleItem(ctx, "perf-2")
		require.NoError(t, err)
		assert.InDelta(t, 50.0, s.Stats().ProgressPercentage, 1e-9)

		_, err = s.ToggleItem(ctx, "perf-2")
		require.NoError(t, err)
		assert.InDelta(t, 25.0, s.Stats().ProgressPercentage, 1e-9)
	})

	t.Run("stats are memoized by store version", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		first := s.Stats()
		second := s.Stats()
		assert.Equal(t, first, second)
		assert.Equal(t, 1, s.statsCache.Len())
	})

	t.Run("filtered items", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		seo := s.FilteredItems(filter.Criteria{Category: checklist.CategorySEO})
		require.Len(t, seo, 2)
		assert.Equal(t, "seo-1", seo[0].ID)
		assert.Equal(t, "seo-2", seo[1].ID)
	})
}

func TestSessionMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("update notes", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		it, err := s.UpdateNotes(ctx, "seo-1", "done via plugin")
		require.NoError(t, err)
		assert.Equal(t, "done via plugin", it.Notes)
	})

	t.Run("add verification initializes pending", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		it, err := s.AddVerification(ctx, "perf-1", checklist.VerificationAutomated)
		require.NoError(t, err)
		require.NotNil(t, it.Verification)
		assert.Equal(t, checklist.VerificationPending, it.Verification.Status)
	})

	t.Run("log actual minutes", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		it, err := s.LogActualMinutes(ctx, "perf-1", 45)
		require.NoError(t, err)
		require.NotNil(t, it.ActualMinutes)
		assert.Equal(t, 45, *it.ActualMinutes)
	})

	t.Run("remote subscription feeds the store", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		s, _ := openSession(t, source)

		remote, err := s.Store().Get("seo-2")
		require.NoError(t, err)
		remote.IsCompleted = true
		now := time.Now()
		remote.CompletedAt = &now
		source.push(remote)

		got, err := s.Store().Get("seo-2")
		require.NoError(t, err)
		assert.True(t, got.IsCompleted)
	})
}

func TestElapsed(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 90, Elapsed(start, start.Add(90*time.Second)))
	assert.Equal(t, 0, Elapsed(start, start))
	assert.Equal(t, 0, Elapsed(start, start.Add(-time.Minute)))
	assert.Equal(t, 59, Elapsed(start, start.Add(59*time.Second+900*time.Millisecond)))
}
