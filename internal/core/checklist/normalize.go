package checklist

import (
	"fmt"
	"strings"
	"time"
)

// RawItem is the loosely-typed record shape persisted layers hand us.
// Fields mirror the external record contract; Normalize maps it into the
// closed Item shape at the store boundary so the rest of the engine never
// sees untrusted data.
type RawItem struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Priority         string     `json:"priority"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at"`
	EstimatedMinutes *int       `json:"estimated_minutes"`
	ActualMinutes    *int       `json:"actual_minutes"`
	Notes            string     `json:"notes"`
	Verification     *struct {
		Method     string     `json:"method"`
		Status     string     `json:"status"`
		VerifiedAt *time.Time `json:"verified_at"`
	} `json:"verification"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize validates a raw record and maps it into an Item.
//
// Unknown categories map to CategoryGeneral so imported items are surfaced
// rather than silently dropped from breakdowns. Unknown priorities and
// negative durations are rejected; the completion invariant is repaired by
// deriving CompletedAt from IsCompleted.
func Normalize(raw RawItem) (Item, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return Item{}, fmt.Errorf("item has empty id")
	}
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Item{}, fmt.Errorf("item %s has empty title", id)
	}

	category := Category(strings.TrimSpace(raw.Category))
	if !category.Valid() {
		category = CategoryGeneral
	}

	priority := Priority(strings.ToLower(strings.TrimSpace(raw.Priority)))
	if !priority.Valid() {
		return Item{}, fmt.Errorf("item %s has unknown priority %q", id, raw.Priority)
	}

	if raw.EstimatedMinutes != nil && *raw.EstimatedMinutes < 0 {
		return Item{}, fmt.Errorf("item %s has negative estimated minutes", id)
	}
	if raw.ActualMinutes != nil && *raw.ActualMinutes < 0 {
		return Item{}, fmt.Errorf("item %s has negative actual minutes", id)
	}

	it := Item{
		ID:               id,
		Title:            title,
		Description:      strings.TrimSpace(raw.Description),
		Category:         category,
		Priority:         priority,
		IsCompleted:      raw.IsCompleted,
		EstimatedMinutes: raw.EstimatedMinutes,
		ActualMinutes:    raw.ActualMinutes,
		Notes:            raw.Notes,
		CreatedAt:        raw.CreatedAt,
		UpdatedAt:        raw.UpdatedAt,
	}

	// Repair the completion invariant rather than trusting the record.
	if raw.IsCompleted {
		at := raw.UpdatedAt
		if raw.CompletedAt != nil {
			at = *raw.CompletedAt
		}
		it.CompletedAt = &at
	}

	if raw.Verification != nil {
		method := VerificationMethod(strings.ToLower(strings.TrimSpace(raw.Verification.Method)))
		if !method.Valid() {
			return Item{}, fmt.Errorf("item %s has unknown verification method %q", id, raw.Verification.Method)
		}
		status := VerificationStatus(strings.ToLower(strings.TrimSpace(raw.Verification.Status)))
		if !status.Valid() {
			status = VerificationPending
		}
		it.Verification = &Verification{
			Method:     method,
			Status:     status,
			VerifiedAt: raw.Verification.VerifiedAt,
		}
	}

	return it, nil
}

// NormalizeAll maps a slice of raw records, failing on the first invalid one.
func NormalizeAll(raws []RawItem) ([]Item, error) {
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		it, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
