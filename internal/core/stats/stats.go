// Package stats computes derived progress statistics for a checklist.
// Everything here is a pure projection: Stats is never persisted and is
// recomputed from the current item list on every read.
package stats

import "github.com/colonyops/checkup/internal/core/checklist"

// CategoryStats is the completion breakdown for one category.
type CategoryStats struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Stats is the full derived view over a checklist's items.
//
// Percentages are unrounded ratios scaled to 0..100; rounding belongs at the
// presentation boundary so re-aggregation stays lossless.
type Stats struct {
	TotalItems         int                                          `json:"total_items"`
	CompletedItems     int                                          `json:"completed_items"`
	ProgressPercentage float64                                      `json:"progress_percentage"`
	Categories         map[checklist.Category]CategoryStats         `json:"categories"`
	Priorities         map[checklist.Priority]int                   `json:"priorities"`
	VerificationStatus map[checklist.VerificationStatus]int         `json:"verification_status"`
	EstimatedMinutes   int                                          `json:"estimated_minutes"`
	ActualMinutes      int                                          `json:"actual_minutes"`
}

// Compute derives Stats from items. Pure and idempotent: no side effects,
// O(n), identical output for identical input, safe to call on every render.
//
// Items with a category or priority outside the known enums are excluded
// from the respective breakdown map but still count toward the overall
// progress percentage.
func Compute(items []checklist.Item) Stats {
	s := Stats{
		Categories:         make(map[checklist.Category]CategoryStats),
		Priorities:         make(map[checklist.Priority]int),
		VerificationStatus: make(map[checklist.VerificationStatus]int),
	}

	for _, it := range items {
		s.TotalItems++
		if it.IsCompleted {
			s.CompletedItems++
		}

		if it.Category.Valid() {
			cs := s.Categories[it.Category]
			cs.Total++
			if it.IsCompleted {
				cs.Completed++
			}
			s.Categories[it.Category] = cs
		}

		if it.Priority.Valid() {
			s.Priorities[it.Priority]++
		}

		if it.Verification != nil && it.Verification.Status.Valid() {
			s.VerificationStatus[it.Verification.Status]++
		}

		if it.EstimatedMinutes != nil {
			s.EstimatedMinutes += *it.EstimatedMinutes
		}
		if it.ActualMinutes != nil {
			s.ActualMinutes += *it.ActualMinutes
		}
	}

	if s.TotalItems > 0 {
		s.ProgressPercentage = float64(s.CompletedItems) / float64(s.TotalItems) * 100
	}

	for cat, cs := range s.Categories {
		if cs.Total > 0 {
			cs.Percentage = float64(cs.Completed) / float64(cs.Total) * 100
		}
		s.Categories[cat] = cs
	}

	return s
}

// RemainingMinutes returns the estimated minutes across incomplete items.
// Like Compute, a pure projection.
func RemainingMinutes(items []checklist.Item) int {
	total := 0
	for _, it := range items {
		if !it.IsCompleted && it.EstimatedMinutes != nil {
			total += *it.EstimatedMinutes
		}
	}
	return total
}
