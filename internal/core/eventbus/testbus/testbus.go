// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/checkup/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus
	cancel context.CancelFunc

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus, starts it in a background goroutine, and
// subscribes to all event types for recording. The bus is stopped
// when the test completes.
func New(t *testing.T) *Bus {
	t.Helper()

	bus := eventbus.New(64)
	ctx, cancel := context.WithCancel(context.Background())

	tb := &Bus{
		EventBus: bus,
		cancel:   cancel,
	}

	// Subscribe to all event types for recording.
	bus.SubscribeChecklistLoaded(func(p eventbus.ChecklistLoadedPayload) {
		tb.record(eventbus.EventChecklistLoaded, p)
	})
	bus.SubscribeItemToggled(func(p eventbus.ItemToggledPayload) {
		tb.record(eventbus.EventItemToggled, p)
	})
	bus.SubscribeItemUpdated(func(p eventbus.ItemUpdatedPayload) {
		tb.record(eventbus.EventItemUpdated, p)
	})
	bus.SubscribeItemVerified(func(p eventbus.ItemVerifiedPayload) {
		tb.record(eventbus.EventItemVerified, p)
	})
	bus.SubscribeMutationFailed(func(p eventbus.MutationFailedPayload) {
		tb.record(eventbus.EventMutationFailed, p)
	})
	bus.SubscribeRemoteReceived(func(p eventbus.RemoteReceivedPayload) {
		tb.record(eventbus.EventRemoteReceived, p)
	})

	go bus.Start(ctx)

	t.Cleanup(func() {
		cancel()
	})

	return tb
}

func (b *Bus) record(event eventbus.Event, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events.
func (b *Bus) Events() []RecordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// WaitFor blocks until an event of the given type has been recorded or the
// timeout elapses. Returns the first matching event and whether it arrived.
func (b *Bus) WaitFor(event eventbus.Event, timeout time.Duration) (RecordedEvent, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		for _, rec := range b.events {
			if rec.Event == event {
				b.mu.Unlock()
				return rec, true
			}
		}
		b.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	return RecordedEvent{}, false
}

// Stop cancels the dispatch loop early.
func (b *Bus) Stop() {
	b.cancel()
}
