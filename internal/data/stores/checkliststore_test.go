package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, pollInterval time.Duration) *ChecklistStore {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewChecklistStore(database, pollInterval)
}

func seedChecklist(t *testing.T, store *ChecklistStore) checklist.Checklist {
	t.Helper()

	mins := 30
	cl, err := store.CreateChecklist(context.Background(), checklist.Checklist{
		Title:       "Website Launch Audit",
		Description: "pre-launch checks",
		ClientProfile: &checklist.ClientProfile{
			ID:           "client1",
			Name:         "Acme Bakery",
			BusinessType: "local",
			Industry:     "food",
			CompanySize:  "small",
		},
		Items: []checklist.Item{
			{
				Title:            "Optimize hero images",
				Category:         checklist.CategoryPerformance,
				Priority:         checklist.PriorityHigh,
				EstimatedMinutes: &mins,
			},
			{
				Title:    "Submit sitemap",
				Category: checklist.CategorySEO,
				Priority: checklist.PriorityMedium,
			},
		},
	})
	require.NoError(t, err)
	return cl
}

func TestChecklistStore_CreateAndFetch(t *testing.T) {
	store := newTestStore(t, 0)
	created := seedChecklist(t, store)

	require.NotEmpty(t, created.ID)

	got, err := store.FetchChecklist(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Website Launch Audit", got.Title)
	require.NotNil(t, got.ClientProfile)
	assert.Equal(t, "Acme Bakery", got.ClientProfile.Name)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Optimize hero images", got.Items[0].Title)
	assert.Equal(t, checklist.CategoryPerformance, got.Items[0].Category)
	require.NotNil(t, got.Items[0].EstimatedMinutes)
	assert.Equal(t, 30, *got.Items[0].EstimatedMinutes)
	assert.Equal(t, "Submit sitemap", got.Items[1].Title)
}

func TestChecklistStore_FetchChecklist_NotFound(t *testing.T) {
	store := newTestStore(t, 0)

	_, err := store.FetchChecklist(context.Background(), "missing")
	require.ErrorIs(t, err, checklist.ErrNotFound)
}

func TestChecklistStore_AddItem(t *testing.T) {
	store := newTestStore(t, 0)
	cl := seedChecklist(t, store)

	added, err := store.AddItem(context.Background(), cl.ID, checklist.Item{
		Title:    "Enable HTTPS redirect",
		Category: checklist.CategorySecurity,
		Priority: checklist.PriorityCritical,
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)

	got, err := store.FetchChecklist(context.Background(), cl.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "Enable HTTPS redirect", got.Items[2].Title)

	t.Run("missing checklist", func(t *testing.T) {
		_, err := store.AddItem(context.Background(), "missing", checklist.Item{Title: "x"})
		require.ErrorIs(t, err, checklist.ErrNotFound)
	})
}

func TestChecklistStore_WriteItemPatch(t *testing.T) {
	store := newTestStore(t, 0)
	cl := seedChecklist(t, store)
	itemID := cl.Items[0].ID

	t.Run("toggle completes and persists", func(t *testing.T) {
		updated, err := store.WriteItemPatch(context.Background(), cl.ID, itemID, checklist.TogglePatch())
		require.NoError(t, err)
		assert.True(t, updated.IsCompleted)
		require.NotNil(t, updated.CompletedAt)

		got, err := store.FetchChecklist(context.Background(), cl.ID)
		require.NoError(t, err)
		assert.True(t, got.Items[0].IsCompleted)
		require.NotNil(t, got.Items[0].CompletedAt)
	})

	t.Run("notes and verification round-trip", func(t *testing.T) {
		_, err := store.WriteItemPatch(context.Background(), cl.ID, itemID, checklist.NotesPatch("waiting on CDN config"))
		require.NoError(t, err)

		updated, err := store.WriteItemPatch(context.Background(), cl.ID, itemID, checklist.VerificationPatch(checklist.VerificationManual))
		require.NoError(t, err)
		require.NotNil(t, updated.Verification)
		assert.Equal(t, checklist.VerificationManual, updated.Verification.Method)
		assert.Equal(t, checklist.VerificationPending, updated.Verification.Status)

		got, err := store.FetchChecklist(context.Background(), cl.ID)
		require.NoError(t, err)
		assert.Equal(t, "waiting on CDN config", got.Items[0].Notes)
		require.NotNil(t, got.Items[0].Verification)
		assert.Equal(t, checklist.VerificationManual, got.Items[0].Verification.Method)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := store.WriteItemPatch(context.Background(), cl.ID, "missing", checklist.TogglePatch())
		require.ErrorIs(t, err, checklist.ErrNotFound)
	})

	t.Run("invalid patch rejected", func(t *testing.T) {
		neg := -5
		_, err := store.WriteItemPatch(context.Background(), cl.ID, itemID, checklist.ActualMinutesPatch(neg))
		require.ErrorIs(t, err, checklist.ErrInvalidPatch)
	})
}

func TestChecklistStore_ListChecklists(t *testing.T) {
	store := newTestStore(t, 0)
	cl := seedChecklist(t, store)

	_, err := store.WriteItemPatch(context.Background(), cl.ID, cl.Items[0].ID, checklist.TogglePatch())
	require.NoError(t, err)

	summaries, err := store.ListChecklists(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, cl.ID, summaries[0].ID)
	assert.Equal(t, "Acme Bakery", summaries[0].ClientName)
	assert.Equal(t, 2, summaries[0].Items)
	assert.Equal(t, 1, summaries[0].Completed)
}

func TestChecklistStore_Subscribe(t *testing.T) {
	store := newTestStore(t, 10*time.Millisecond)
	cl := seedChecklist(t, store)

	changed := make(chan checklist.Item, 8)
	unsubscribe := store.Subscribe(cl.ID, func(it checklist.Item) {
		changed <- it
	})
	defer unsubscribe()

	// Give the watermark a head start so the write is strictly newer.
	time.Sleep(5 * time.Millisecond)

	_, err := store.WriteItemPatch(context.Background(), cl.ID, cl.Items[1].ID, checklist.TogglePatch())
	require.NoError(t, err)

	select {
	case it := <-changed:
		assert.Equal(t, cl.Items[1].ID, it.ID)
		assert.True(t, it.IsCompleted)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}
