package checklist

import "context"

// Unsubscribe tears down a change subscription. Safe to call more than once.
type Unsubscribe func()

// Source is the persistence collaborator contract. Implementations live in
// internal/data; the engine consumes them through this interface only.
type Source interface {
	// FetchChecklist loads a checklist with its items.
	// Returns ErrNotFound if the checklist does not exist.
	FetchChecklist(ctx context.Context, id string) (Checklist, error)

	// WriteItemPatch persists a single-item patch and returns the item as
	// the backend now sees it.
	// Returns ErrNotFound if the item does not exist.
	WriteItemPatch(ctx context.Context, checklistID, itemID string, patch Patch) (Item, error)

	// Subscribe registers a callback for remote item changes on a
	// checklist. Delivery order across items is not guaranteed.
	Subscribe(checklistID string, onRemoteChange func(Item)) Unsubscribe
}
