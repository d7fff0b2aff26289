// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within checkup.
package eventbus

import "github.com/colonyops/checkup/internal/core/checklist"

// Event names a bus event type.
type Event string

// All event types, sorted A-Z.
const (
	EventChecklistLoaded Event = "checklist.loaded"
	EventItemToggled     Event = "item.toggled"
	EventItemUpdated     Event = "item.updated"
	EventItemVerified    Event = "item.verified"
	EventMutationFailed  Event = "mutation.failed"
	EventRemoteReceived  Event = "remote.received"
)

// ChecklistLoadedPayload is emitted when a checklist is loaded into a session.
type ChecklistLoadedPayload struct {
	Checklist *checklist.Checklist
}

// ItemToggledPayload is emitted when an item's completion state flips.
type ItemToggledPayload struct {
	Item *checklist.Item
}

// ItemUpdatedPayload is emitted on note edits and time logging.
type ItemUpdatedPayload struct {
	Item *checklist.Item
}

// ItemVerifiedPayload is emitted when a verification is attached to an item.
type ItemVerifiedPayload struct {
	Item *checklist.Item
}

// MutationFailedPayload is emitted after a persistence write was rejected
// and the store has been rolled back.
type MutationFailedPayload struct {
	ItemID string
	Err    error
}

// RemoteReceivedPayload is emitted when a remote change is applied to the
// local store, including changes that were deferred behind an in-flight
// mutation.
type RemoteReceivedPayload struct {
	Item     *checklist.Item
	Deferred bool
}
