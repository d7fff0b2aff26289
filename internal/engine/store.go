// Package engine holds the in-memory checklist session: the item store,
// the optimistic mutation coordinator, and the session facade the CLI and
// TUI consume.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/checkup/internal/core/checklist"
)

// Observer is notified synchronously after every successful store change.
// Observers run on the mutating goroutine and must not call back into the
// store.
type Observer func()

// ItemStore is the single in-memory source of truth for one checklist's
// items. It holds a normalized collection keyed by ID with authoring order
// preserved, and bumps a version counter on every change so derived views
// can be memoized by identity.
type ItemStore struct {
	mu        sync.RWMutex
	order     []string
	items     map[string]checklist.Item
	version   uint64
	observers []Observer

	now func() time.Time
}

// NewItemStore creates an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items: make(map[string]checklist.Item),
		now:   time.Now,
	}
}

// Load replaces the entire collection. Used after the initial fetch or a
// full resync. Fails without modifying the store if items contain a
// duplicate ID.
func (s *ItemStore) Load(items []checklist.Item) error {
	next := make(map[string]checklist.Item, len(items))
	order := make([]string, 0, len(items))
	for _, it := range items {
		if _, exists := next[it.ID]; exists {
			return fmt.Errorf("%w: %s", checklist.ErrDuplicateID, it.ID)
		}
		next[it.ID] = it
		order = append(order, it.ID)
	}

	s.mu.Lock()
	s.items = next
	s.order = order
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// Get returns the item with the given ID.
// Returns checklist.ErrNotFound if absent.
func (s *ItemStore) Get(id string) (checklist.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return checklist.Item{}, checklist.ErrNotFound
	}
	return it, nil
}

// Items returns a copy of all items in their original relative order.
func (s *ItemStore) Items() []checklist.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]checklist.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Len returns the number of items held.
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Version returns the monotonically increasing change counter. Two reads
// returning the same version are guaranteed to observe identical items.
func (s *ItemStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ApplyPatch merges a validated patch into the item with the given ID and
// returns the result. CompletedAt is derived from the completion transition,
// never taken from the caller.
// Returns checklist.ErrNotFound if the item is absent.
func (s *ItemStore) ApplyPatch(id string, patch checklist.Patch) (checklist.Item, error) {
	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return checklist.Item{}, checklist.ErrNotFound
	}

	it = patch.Apply(it, s.now())
	s.items[id] = it
	s.version++
	s.mu.Unlock()

	s.notify()
	return it, nil
}

// Replace swaps in a full item value, keeping its position. Used by the
// coordinator for rollback and for reconciled remote state.
// Returns checklist.ErrNotFound if the item is absent.
func (s *ItemStore) Replace(it checklist.Item) error {
	s.mu.Lock()
	if _, ok := s.items[it.ID]; !ok {
		s.mu.Unlock()
		return checklist.ErrNotFound
	}
	s.items[it.ID] = it
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// OnChange registers an observer. Registration order is notification order.
func (s *ItemStore) OnChange(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *ItemStore) notify() {
	s.mu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}
