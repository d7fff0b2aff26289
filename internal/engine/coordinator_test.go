package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/core/eventbus/testbus"
)

func newCoordinator(t *testing.T, source *fakeSource) (*Coordinator, *ItemStore, *testbus.Bus) {
	t.Helper()
	store := NewItemStore()
	require.NoError(t, store.Load(fixtureChecklist().Items))
	bus := testbus.New(t)
	c := NewCoordinator(store, source, "cl-1", bus.EventBus, zerolog.Nop())
	return c, store, bus
}

func TestCoordinatorMutate(t *testing.T) {
	ctx := context.Background()

	t.Run("successful toggle applies optimistically and persists", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		c, store, bus := newCoordinator(t, source)

		it, err := c.Mutate(ctx, "perf-1", checklist.TogglePatch())
		require.NoError(t, err)
		assert.True(t, it.IsCompleted)
		require.NotNil(t, it.CompletedAt)

		stored, err := store.Get("perf-1")
		require.NoError(t, err)
		assert.True(t, stored.IsCompleted)
		assert.Equal(t, []string{"perf-1"}, source.writeOrder())

		_, ok := bus.WaitFor(eventbus.EventItemToggled, time.Second)
		assert.True(t, ok)
	})

	t.Run("malformed patch fails fast and never reaches the store", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		c, store, _ := newCoordinator(t, source)
		before := store.Version()

		_, err := c.Mutate(ctx, "perf-1", checklist.Patch{})
		require.ErrorIs(t, err, checklist.ErrInvalidPatch)
		assert.Equal(t, before, store.Version())
		assert.Empty(t, source.writeOrder())
	})

	t.Run("unknown item", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		c, _, _ := newCoordinator(t, source)

		_, err := c.Mutate(ctx, "ghost", checklist.TogglePatch())
		assert.ErrorIs(t, err, checklist.ErrNotFound)
	})

	t.Run("rejected write rolls back to pre-mutation snapshot", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		source.failWrites = true
		c, store, bus := newCoordinator(t, source)

		before, err := store.Get("perf-1")
		require.NoError(t, err)

		_, err = c.Mutate(ctx, "perf-1", checklist.TogglePatch())

		var mErr *checklist.MutationError
		require.ErrorAs(t, err, &mErr)
		assert.Equal(t, "perf-1", mErr.ItemID)

		after, err := store.Get("perf-1")
		require.NoError(t, err)
		assert.Equal(t, before, after)

		rec, ok := bus.WaitFor(eventbus.EventMutationFailed, time.Second)
		require.True(t, ok)
		assert.Equal(t, "perf-1", rec.Payload.(eventbus.MutationFailedPayload).ItemID)
	})

	t.Run("same-item mutations are serialized", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		source.writeDelay = 20 * time.Millisecond
		c, store, _ := newCoordinator(t, source)

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.Mutate(ctx, "perf-1", checklist.TogglePatch())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		// Two toggles land back at incomplete; interleaved optimistic
		// applies would lose one.
		it, err := store.Get("perf-1")
		require.NoError(t, err)
		assert.False(t, it.IsCompleted)
		assert.Nil(t, it.CompletedAt)
		assert.Equal(t, []string{"perf-1", "perf-1"}, source.writeOrder())
	})

	t.Run("different items may be in flight concurrently", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		source.writeDelay = 10 * time.Millisecond
		c, store, _ := newCoordinator(t, source)

		var wg sync.WaitGroup
		for _, id := range []string{"perf-1", "seo-1"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.Mutate(ctx, id, checklist.TogglePatch())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		for _, id := range []string{"perf-1", "seo-1"} {
			it, err := store.Get(id)
			require.NoError(t, err)
			assert.True(t, it.IsCompleted)
		}
	})
}

func TestCoordinatorRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("remote push applies directly when item is idle", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		c, store, _ := newCoordinator(t, source)

		remote, err := store.Get("seo-1")
		require.NoError(t, err)
		remote.Notes = "remote note"
		c.OnRemote(remote)

		got, err := store.Get("seo-1")
		require.NoError(t, err)
		assert.Equal(t, "remote note", got.Notes)
	})

	t.Run("remote push is deferred behind in-flight mutation", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		gate := make(chan struct{})
		source.writeGate = gate
		c, store, _ := newCoordinator(t, source)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := c.Mutate(ctx, "perf-1", checklist.NotesPatch("local edit"))
			assert.NoError(t, err)
		}()

		// Wait until the mutation is optimistically applied and blocked on
		// the gated write.
		require.Eventually(t, func() bool {
			it, err := store.Get("perf-1")
			return err == nil && it.Notes == "local edit"
		}, time.Second, time.Millisecond)

		stale, err := store.Get("perf-1")
		require.NoError(t, err)
		stale.Notes = "stale server state"
		c.OnRemote(stale)

		// The optimistic update must not be clobbered while in flight.
		it, err := store.Get("perf-1")
		require.NoError(t, err)
		assert.Equal(t, "local edit", it.Notes)

		close(gate)
		<-done

		// The deferred push lands only after the mutation resolved.
		it, err = store.Get("perf-1")
		require.NoError(t, err)
		assert.Equal(t, "stale server state", it.Notes)
	})

	t.Run("latest deferred push wins the slot", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		gate := make(chan struct{})
		source.writeGate = gate
		c, store, _ := newCoordinator(t, source)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = c.Mutate(ctx, "perf-1", checklist.NotesPatch("local"))
		}()
		require.Eventually(t, func() bool {
			it, err := store.Get("perf-1")
			return err == nil && it.Notes == "local"
		}, time.Second, time.Millisecond)

		first, _ := store.Get("perf-1")
		first.Notes = "remote v1"
		c.OnRemote(first)

		second, _ := store.Get("perf-1")
		second.Notes = "remote v2"
		c.OnRemote(second)

		close(gate)
		<-done

		it, err := store.Get("perf-1")
		require.NoError(t, err)
		assert.Equal(t, "remote v2", it.Notes)
	})

	t.Run("closed coordinator drops remote pushes and skips rollback", func(t *testing.T) {
		source := newFakeSource(fixtureChecklist())
		source.failWrites = true
		gate := make(chan struct{})
		source.writeGate = gate
		c, store, _ := newCoordinator(t, source)

		done := make(chan error, 1)
		go func() {
			_, err := c.Mutate(ctx, "perf-1", checklist.NotesPatch("doomed"))
			done <- err
		}()
		require.Eventually(t, func() bool {
			it, err := store.Get("perf-1")
			return err == nil && it.Notes == "doomed"
		}, time.Second, time.Millisecond)

		c.Close()
		close(gate)
		err := <-done

		var mErr *checklist.MutationError
		require.ErrorAs(t, err, &mErr)

		// No rollback after close: the optimistic value stays, the store
		// is about to be dropped anyway.
		it, gerr := store.Get("perf-1")
		require.NoError(t, gerr)
		assert.Equal(t, "doomed", it.Notes)

		remote := it
		remote.Notes = "late push"
		c.OnRemote(remote)
		it, _ = store.Get("perf-1")
		assert.Equal(t, "doomed", it.Notes)
	})
}
