package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

	base := RawItem{
		ID:        "itm-1",
		Title:     "Optimize Mobile Checkout",
		Category:  "Mobile",
		Priority:  "high",
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("well formed record", func(t *testing.T) {
		it, err := Normalize(base)
		require.NoError(t, err)
		assert.Equal(t, "itm-1", it.ID)
		assert.Equal(t, CategoryMobile, it.Category)
		assert.Equal(t, PriorityHigh, it.Priority)
		assert.False(t, it.IsCompleted)
		assert.Nil(t, it.CompletedAt)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		raw := base
		raw.ID = "  "
		_, err := Normalize(raw)
		assert.Error(t, err)
	})

	t.Run("unknown category maps to general", func(t *testing.T) {
		raw := base
		raw.Category = "Blockchain"
		it, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, CategoryGeneral, it.Category)
	})

	t.Run("unknown priority rejected", func(t *testing.T) {
		raw := base
		raw.Priority = "urgent"
		_, err := Normalize(raw)
		assert.Error(t, err)
	})

	t.Run("priority is case insensitive", func(t *testing.T) {
		raw := base
		raw.Priority = "Critical"
		it, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, PriorityCritical, it.Priority)
	})

	t.Run("negative estimate rejected", func(t *testing.T) {
		raw := base
		minutes := -10
		raw.EstimatedMinutes = &minutes
		_, err := Normalize(raw)
		assert.Error(t, err)
	})

	t.Run("completed without timestamp derives one", func(t *testing.T) {
		raw := base
		raw.IsCompleted = true
		it, err := Normalize(raw)
		require.NoError(t, err)
		require.NotNil(t, it.CompletedAt)
		assert.Equal(t, raw.UpdatedAt, *it.CompletedAt)
	})

	t.Run("stale completed_at on incomplete record is dropped", func(t *testing.T) {
		raw := base
		at := now.Add(-time.Hour)
		raw.CompletedAt = &at
		it, err := Normalize(raw)
		require.NoError(t, err)
		assert.Nil(t, it.CompletedAt)
	})

	t.Run("verification status defaults to pending", func(t *testing.T) {
		raw := base
		raw.Verification = &struct {
			Method     string     `json:"method"`
			Status     string     `json:"status"`
			VerifiedAt *time.Time `json:"verified_at"`
		}{Method: "manual", Status: "queued"}

		it, err := Normalize(raw)
		require.NoError(t, err)
		require.NotNil(t, it.Verification)
		assert.Equal(t, VerificationPending, it.Verification.Status)
	})
}

func TestItemMatches(t *testing.T) {
	it := Item{Title: "Optimize Mobile Checkout", Description: "Reduce taps in payment flow"}

	assert.True(t, it.Matches(""))
	assert.True(t, it.Matches("mobile"))
	assert.True(t, it.Matches("PAYMENT"))
	assert.False(t, Item{Title: "optimize ssl cert"}.Matches("mobile"))
}
