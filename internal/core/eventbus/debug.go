package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger wires bus hooks into the logger so event traffic shows
// up at debug level. Payloads that carry an item also log its ID, which is
// usually what you need when chasing a stuck mutation.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		ev := logger.Debug().Str("event", string(event))
		if id, ok := payloadItemID(payload); ok {
			ev = ev.Str("item", id)
		}
		ev.Msg("event published")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped, buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

// payloadItemID extracts the item ID from payloads that carry one.
func payloadItemID(payload any) (string, bool) {
	switch p := payload.(type) {
	case ItemToggledPayload:
		if p.Item != nil {
			return p.Item.ID, true
		}
	case ItemUpdatedPayload:
		if p.Item != nil {
			return p.Item.ID, true
		}
	case ItemVerifiedPayload:
		if p.Item != nil {
			return p.Item.ID, true
		}
	case RemoteReceivedPayload:
		if p.Item != nil {
			return p.Item.ID, true
		}
	case MutationFailedPayload:
		return p.ItemID, true
	}
	return "", false
}
