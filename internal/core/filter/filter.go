// Package filter narrows a checklist's items to a view subset.
package filter

import "github.com/colonyops/checkup/internal/core/checklist"

// Criteria combines the active predicates. Zero values mean "all":
// an empty Category or Priority is vacuously true, an empty Search matches
// everything, a nil Completed ignores completion state.
type Criteria struct {
	Category  checklist.Category
	Priority  checklist.Priority
	Search    string
	Completed *bool
}

// Empty reports whether no predicate is active.
func (c Criteria) Empty() bool {
	return c.Category == "" && c.Priority == "" && c.Search == "" && c.Completed == nil
}

// Match reports whether a single item passes all active predicates.
func (c Criteria) Match(it checklist.Item) bool {
	if c.Category != "" && it.Category != c.Category {
		return false
	}
	if c.Priority != "" && it.Priority != c.Priority {
		return false
	}
	if c.Completed != nil && it.IsCompleted != *c.Completed {
		return false
	}
	return it.Matches(c.Search)
}

// Apply returns the items passing the criteria, preserving original relative
// order. The input is never mutated; the result is a fresh slice each call.
func Apply(items []checklist.Item, c Criteria) []checklist.Item {
	out := make([]checklist.Item, 0, len(items))
	for _, it := range items {
		if c.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
