package logging

import "context"

type contextKey string

const (
	checklistIDKey contextKey = "checklist_id"
	itemIDKey      contextKey = "item_id"
)

// WithChecklistID adds a checklist ID to the context.
func WithChecklistID(ctx context.Context, checklistID string) context.Context {
	return context.WithValue(ctx, checklistIDKey, checklistID)
}

// WithItemID adds an item ID to the context.
func WithItemID(ctx context.Context, itemID string) context.Context {
	return context.WithValue(ctx, itemIDKey, itemID)
}

// GetChecklistID retrieves the checklist ID from the context.
// Returns empty string if not present.
func GetChecklistID(ctx context.Context) string {
	if id, ok := ctx.Value(checklistIDKey).(string); ok {
		return id
	}
	return ""
}

// GetItemID retrieves the item ID from the context.
// Returns empty string if not present.
func GetItemID(ctx context.Context) string {
	if id, ok := ctx.Value(itemIDKey).(string); ok {
		return id
	}
	return ""
}
