package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/colonyops/checkup/internal/core/checklist"
)

// fakeSource is an in-memory checklist.Source with controllable write
// behavior for exercising the coordinator's failure and ordering paths.
type fakeSource struct {
	mu        sync.Mutex
	checklist checklist.Checklist
	writes    []string // item IDs in write order

	failWrites  bool
	writeDelay  time.Duration
	writeGate   chan struct{} // when set, writes block until it closes
	subscribers []func(checklist.Item)
}

var errWriteRejected = errors.New("persistence rejected write")

func newFakeSource(cl checklist.Checklist) *fakeSource {
	return &fakeSource{checklist: cl}
}

func (f *fakeSource) FetchChecklist(_ context.Context, id string) (checklist.Checklist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checklist.ID != id {
		return checklist.Checklist{}, checklist.ErrNotFound
	}
	return f.checklist, nil
}

func (f *fakeSource) WriteItemPatch(_ context.Context, _, itemID string, patch checklist.Patch) (checklist.Item, error) {
	f.mu.Lock()
	gate := f.writeGate
	delay := f.writeDelay
	fail := f.failWrites
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if fail {
		return checklist.Item{}, errWriteRejected
	}

	for i, it := range f.checklist.Items {
		if it.ID == itemID {
			updated := patch.Apply(it, time.Now())
			f.checklist.Items[i] = updated
			f.writes = append(f.writes, itemID)
			return updated, nil
		}
	}
	return checklist.Item{}, checklist.ErrNotFound
}

func (f *fakeSource) Subscribe(_ string, onRemoteChange func(checklist.Item)) checklist.Unsubscribe {
	f.mu.Lock()
	f.subscribers = append(f.subscribers, onRemoteChange)
	f.mu.Unlock()
	return func() {}
}

// push simulates a remote change arriving over the subscription.
func (f *fakeSource) push(it checklist.Item) {
	f.mu.Lock()
	subs := make([]func(checklist.Item), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(it)
	}
}

func (f *fakeSource) writeOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

func fixtureChecklist() checklist.Checklist {
	est := func(n int) *int { return &n }
	return checklist.Checklist{
		ID:    "cl-1",
		Title: "Launch audit — acme.dev",
		Items: []checklist.Item{
			{ID: "perf-1", Title: "Compress hero images", Category: checklist.CategoryPerformance, Priority: checklist.PriorityHigh, EstimatedMinutes: est(30)},
			{ID: "perf-2", Title: "Enable caching headers", Category: checklist.CategoryPerformance, Priority: checklist.PriorityHigh},
			{ID: "seo-1", Title: "Add meta descriptions", Category: checklist.CategorySEO, Priority: checklist.PriorityLow},
			{ID: "seo-2", Title: "Fix canonical URLs", Category: checklist.CategorySEO, Priority: checklist.PriorityLow},
		},
	}
}
