package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus is a buffered, typed publish/subscribe bus. Publishing never
// blocks: when the buffer is full the event is dropped and the OnDrop hooks
// fire. Subscribers run sequentially on the dispatch goroutine; a panicking
// subscriber is recovered and reported through OnPanic.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start runs the dispatch loop until ctx is canceled. Call from a dedicated
// goroutine.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.invoke(env, fn)
	}
}

func (bus *EventBus) invoke(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// PublishChecklistLoaded publishes a checklist.loaded event.
func (bus *EventBus) PublishChecklistLoaded(p ChecklistLoadedPayload) { bus.send(EventChecklistLoaded, p) }

// SubscribeChecklistLoaded registers a handler for checklist.loaded events.
func (bus *EventBus) SubscribeChecklistLoaded(fn func(ChecklistLoadedPayload)) {
	bus.subscribe(EventChecklistLoaded, func(p any) { fn(p.(ChecklistLoadedPayload)) })
}

// PublishItemToggled publishes an item.toggled event.
func (bus *EventBus) PublishItemToggled(p ItemToggledPayload) { bus.send(EventItemToggled, p) }

// SubscribeItemToggled registers a handler for item.toggled events.
func (bus *EventBus) SubscribeItemToggled(fn func(ItemToggledPayload)) {
	bus.subscribe(EventItemToggled, func(p any) { fn(p.(ItemToggledPayload)) })
}

// PublishItemUpdated publishes an item.updated event.
func (bus *EventBus) PublishItemUpdated(p ItemUpdatedPayload) { bus.send(EventItemUpdated, p) }

// SubscribeItemUpdated registers a handler for item.updated events.
func (bus *EventBus) SubscribeItemUpdated(fn func(ItemUpdatedPayload)) {
	bus.subscribe(EventItemUpdated, func(p any) { fn(p.(ItemUpdatedPayload)) })
}

// PublishItemVerified publishes an item.verified event.
func (bus *EventBus) PublishItemVerified(p ItemVerifiedPayload) { bus.send(EventItemVerified, p) }

// SubscribeItemVerified registers a handler for item.verified events.
func (bus *EventBus) SubscribeItemVerified(fn func(ItemVerifiedPayload)) {
	bus.subscribe(EventItemVerified, func(p any) { fn(p.(ItemVerifiedPayload)) })
}

// PublishMutationFailed publishes a mutation.failed event.
func (bus *EventBus) PublishMutationFailed(p MutationFailedPayload) { bus.send(EventMutationFailed, p) }

// SubscribeMutationFailed registers a handler for mutation.failed events.
func (bus *EventBus) SubscribeMutationFailed(fn func(MutationFailedPayload)) {
	bus.subscribe(EventMutationFailed, func(p any) { fn(p.(MutationFailedPayload)) })
}

// PublishRemoteReceived publishes a remote.received event.
func (bus *EventBus) PublishRemoteReceived(p RemoteReceivedPayload) { bus.send(EventRemoteReceived, p) }

// SubscribeRemoteReceived registers a handler for remote.received events.
func (bus *EventBus) SubscribeRemoteReceived(fn func(RemoteReceivedPayload)) {
	bus.subscribe(EventRemoteReceived, func(p any) { fn(p.(RemoteReceivedPayload)) })
}
