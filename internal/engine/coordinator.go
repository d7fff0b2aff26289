package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/core/logging"
)

// itemState tracks the in-flight mutation pipeline for one item.
//
// gate serializes mutations to the same item: a second mutation waits for
// the in-flight write to resolve before applying. deferred is the
// single-slot queue for remote pushes that arrive while a local mutation is
// in flight; the latest push wins the slot and is applied on resolution.
type itemState struct {
	gate sync.Mutex

	mu       sync.Mutex
	busy     bool
	deferred *checklist.Item
}

// Coordinator applies user-initiated changes to single items: validate,
// optimistic local apply, asynchronous persistence write, rollback on
// failure. Mutations to different items are independent and may be in
// flight concurrently.
type Coordinator struct {
	store       *ItemStore
	source      checklist.Source
	bus         *eventbus.EventBus
	log         zerolog.Logger
	checklistID string

	closed atomic.Bool

	mu    sync.Mutex
	items map[string]*itemState
}

// NewCoordinator creates a coordinator bound to one checklist's store and
// persistence source.
func NewCoordinator(store *ItemStore, source checklist.Source, checklistID string, bus *eventbus.EventBus, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:       store,
		source:      source,
		bus:         bus,
		log:         log.With().Str("component", "coordinator").Logger(),
		checklistID: checklistID,
		items:       make(map[string]*itemState),
	}
}

func (c *Coordinator) state(itemID string) *itemState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.items[itemID]
	if !ok {
		st = &itemState{}
		c.items[itemID] = st
	}
	return st
}

// Mutate runs the optimistic mutation protocol for one item.
//
// A malformed patch fails fast before the store is touched. On persistence
// failure the item is rolled back to its pre-mutation snapshot and a
// *checklist.MutationError is returned; the caller decides whether to
// retry. If the session closed while the write was in flight, the result is
// discarded and no rollback is applied.
func (c *Coordinator) Mutate(ctx context.Context, itemID string, patch checklist.Patch) (checklist.Item, error) {
	if err := patch.Validate(); err != nil {
		return checklist.Item{}, err
	}

	ctx = logging.WithItemID(logging.WithChecklistID(ctx, c.checklistID), itemID)

	st := c.state(itemID)
	st.gate.Lock()
	defer st.gate.Unlock()

	prev, err := c.store.Get(itemID)
	if err != nil {
		return checklist.Item{}, err
	}

	st.mu.Lock()
	st.busy = true
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.busy = false
		deferred := st.deferred
		st.deferred = nil
		st.mu.Unlock()

		if deferred != nil && !c.closed.Load() {
			c.applyRemote(*deferred, true)
		}
	}()

	// Optimistic apply; observers see the change before the write resolves.
	applied, err := c.store.ApplyPatch(itemID, patch)
	if err != nil {
		return checklist.Item{}, err
	}

	if _, err := c.source.WriteItemPatch(ctx, c.checklistID, itemID, patch); err != nil {
		if c.closed.Load() {
			c.log.Debug().Ctx(ctx).Msg("write failed after session close, discarding")
			return checklist.Item{}, &checklist.MutationError{ItemID: itemID, Err: err}
		}

		if rbErr := c.store.Replace(prev); rbErr != nil {
			c.log.Error().Ctx(ctx).Err(rbErr).Msg("rollback failed")
		}
		c.log.Warn().Ctx(ctx).Err(err).Msg("persistence write rejected, rolled back")
		c.bus.PublishMutationFailed(eventbus.MutationFailedPayload{ItemID: itemID, Err: err})
		return checklist.Item{}, &checklist.MutationError{ItemID: itemID, Err: err}
	}

	c.publishApplied(patch, applied)
	return applied, nil
}

func (c *Coordinator) publishApplied(patch checklist.Patch, it checklist.Item) {
	switch {
	case patch.ToggleCompleted:
		c.bus.PublishItemToggled(eventbus.ItemToggledPayload{Item: &it})
	case patch.Verification != nil:
		c.bus.PublishItemVerified(eventbus.ItemVerifiedPayload{Item: &it})
	default:
		c.bus.PublishItemUpdated(eventbus.ItemUpdatedPayload{Item: &it})
	}
}

// OnRemote handles a remote push for an item. If a local mutation for the
// same item is in flight, the push is parked and applied only after that
// mutation resolves, so stale server state never clobbers an optimistic
// update. Last-writer-wins is decided by mutation completion order, not
// arrival order.
func (c *Coordinator) OnRemote(it checklist.Item) {
	if c.closed.Load() {
		return
	}

	st := c.state(it.ID)
	st.mu.Lock()
	if st.busy {
		remote := it
		st.deferred = &remote
		st.mu.Unlock()
		c.log.Debug().Str("item", it.ID).Msg("remote push deferred behind in-flight mutation")
		return
	}
	st.mu.Unlock()

	c.applyRemote(it, false)
}

func (c *Coordinator) applyRemote(it checklist.Item, wasDeferred bool) {
	if err := c.store.Replace(it); err != nil {
		c.log.Warn().Err(err).Str("item", it.ID).Msg("remote push for unknown item dropped")
		return
	}
	c.bus.PublishRemoteReceived(eventbus.RemoteReceivedPayload{Item: &it, Deferred: wasDeferred})
}

// Close marks the session ended. In-flight writes are allowed to complete
// but their results are discarded; no rollback touches the store afterwards.
func (c *Coordinator) Close() {
	c.closed.Store(true)
}
