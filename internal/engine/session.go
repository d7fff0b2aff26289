package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/eventbus"
	"github.com/colonyops/checkup/internal/core/filter"
	"github.com/colonyops/checkup/internal/core/stats"
	"github.com/colonyops/checkup/pkg/kv"
)

// Session is the facade one consumer (CLI command or TUI) holds over a
// single open checklist: the item store, the mutation coordinator, and the
// derived projections. A session exclusively owns its store; concurrent
// multi-client editing is reconciled through the remote subscription, not
// locking.
type Session struct {
	checklist   checklist.Checklist // metadata only; items live in the store
	store       *ItemStore
	coordinator *Coordinator
	unsubscribe checklist.Unsubscribe
	log         zerolog.Logger

	startedAt  time.Time
	statsCache *kv.Store[uint64, stats.Stats]
}

// Open fetches a checklist from the source, loads it into a fresh store,
// and wires the remote subscription through the coordinator.
func Open(ctx context.Context, source checklist.Source, checklistID string, bus *eventbus.EventBus, log zerolog.Logger) (*Session, error) {
	cl, err := source.FetchChecklist(ctx, checklistID)
	if err != nil {
		return nil, fmt.Errorf("fetch checklist %s: %w", checklistID, err)
	}

	store := NewItemStore()
	if err := store.Load(cl.Items); err != nil {
		return nil, fmt.Errorf("load checklist %s: %w", checklistID, err)
	}

	coordinator := NewCoordinator(store, source, checklistID, bus, log)

	s := &Session{
		checklist:   cl,
		store:       store,
		coordinator: coordinator,
		log:         log.With().Str("component", "session").Str("checklist", checklistID).Logger(),
		startedAt:   time.Now(),
		statsCache:  kv.New[uint64, stats.Stats](),
	}
	s.unsubscribe = source.Subscribe(checklistID, coordinator.OnRemote)

	bus.PublishChecklistLoaded(eventbus.ChecklistLoadedPayload{Checklist: &cl})
	s.log.Info().Int("items", store.Len()).Msg("checklist session opened")

	return s, nil
}

// Checklist returns the checklist metadata with the store's current items.
func (s *Session) Checklist() checklist.Checklist {
	cl := s.checklist
	cl.Items = s.store.Items()
	return cl
}

// Store exposes the underlying item store for observers.
func (s *Session) Store() *ItemStore {
	return s.store
}

// Stats returns the aggregated view of the current items, memoized by store
// version so repeated reads between changes do no work.
func (s *Session) Stats() stats.Stats {
	version := s.store.Version()
	if cached, ok := s.statsCache.Get(version); ok {
		return cached
	}

	computed := stats.Compute(s.store.Items())
	s.statsCache.Clear()
	s.statsCache.Set(version, computed)
	return computed
}

// FilteredItems returns the items passing the criteria in original order.
func (s *Session) FilteredItems(c filter.Criteria) []checklist.Item {
	return filter.Apply(s.store.Items(), c)
}

// ToggleItem flips an item's completion state.
func (s *Session) ToggleItem(ctx context.Context, itemID string) (checklist.Item, error) {
	return s.coordinator.Mutate(ctx, itemID, checklist.TogglePatch())
}

// UpdateNotes replaces an item's notes.
func (s *Session) UpdateNotes(ctx context.Context, itemID, notes string) (checklist.Item, error) {
	return s.coordinator.Mutate(ctx, itemID, checklist.NotesPatch(notes))
}

// AddVerification attaches a verification with the given method, starting
// in pending status.
func (s *Session) AddVerification(ctx context.Context, itemID string, method checklist.VerificationMethod) (checklist.Item, error) {
	return s.coordinator.Mutate(ctx, itemID, checklist.VerificationPatch(method))
}

// LogActualMinutes records time actually spent on an item.
func (s *Session) LogActualMinutes(ctx context.Context, itemID string, minutes int) (checklist.Item, error) {
	return s.coordinator.Mutate(ctx, itemID, checklist.ActualMinutesPatch(minutes))
}

// StartedAt returns when the session was opened.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Elapsed returns whole seconds between the session start and now. Purely
// presentational; carries no authority over persisted data.
func (s *Session) Elapsed(now time.Time) int {
	return Elapsed(s.startedAt, now)
}

// Snapshot builds the JSON-safe export of the session's current state.
func (s *Session) Snapshot() Snapshot {
	return BuildSnapshot(s.Checklist(), time.Now())
}

// Close ends the session: the subscription is torn down and in-flight write
// results are discarded from here on. Safe to call more than once.
func (s *Session) Close() {
	s.coordinator.Close()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.log.Debug().Msg("checklist session closed")
}

// Elapsed computes whole seconds between two instants, never negative.
// Modeled as a value from explicit instants rather than an internal ticker
// so the session clock has no hidden lifecycle state.
func Elapsed(startedAt, now time.Time) int {
	d := now.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
