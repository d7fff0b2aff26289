// Package checklist defines the audit checklist domain model.
package checklist

import (
	"strings"
	"time"
)

// Category classifies what part of a client site an item audits.
type Category string

const (
	CategoryPerformance Category = "Performance"
	CategorySEO         Category = "SEO"
	CategoryUX          Category = "UX"
	CategorySecurity    Category = "Security"
	CategoryAnalytics   Category = "Analytics"
	CategoryContent     Category = "Content"
	CategoryMobile      Category = "Mobile"
	CategoryConversion  Category = "Conversion"
	CategoryGeneral     Category = "General"
)

// Categories lists all known categories in display order.
var Categories = []Category{
	CategoryPerformance,
	CategorySEO,
	CategoryUX,
	CategorySecurity,
	CategoryAnalytics,
	CategoryContent,
	CategoryMobile,
	CategoryConversion,
	CategoryGeneral,
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority ranks how urgent an item is. Severity order is
// critical > high > medium > low.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Priorities lists all priorities from most to least severe.
var Priorities = []Priority{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the severity rank of the priority, 0 being most severe.
// Unknown priorities rank last.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return len(Priorities)
}

// VerificationMethod records how an item's completion was checked.
type VerificationMethod string

const (
	VerificationManual    VerificationMethod = "manual"
	VerificationAutomated VerificationMethod = "automated"
	VerificationExternal  VerificationMethod = "external"
)

// Valid reports whether the method is one of the known values.
func (m VerificationMethod) Valid() bool {
	switch m {
	case VerificationManual, VerificationAutomated, VerificationExternal:
		return true
	}
	return false
}

// VerificationStatus is the outcome of a verification.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)

// Valid reports whether the status is one of the known values.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationFailed:
		return true
	}
	return false
}

// Verification records a completion check attached to an item.
type Verification struct {
	Method     VerificationMethod `json:"method"`
	Status     VerificationStatus `json:"status"`
	VerifiedAt *time.Time         `json:"verified_at,omitempty"`
}

// Item is a single actionable entry in an audit checklist.
//
// CompletedAt is present exactly when IsCompleted is true; the engine
// derives it on completion transitions rather than trusting callers.
type Item struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	Category         Category      `json:"category"`
	Priority         Priority      `json:"priority"`
	IsCompleted      bool          `json:"is_completed"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	EstimatedMinutes *int          `json:"estimated_minutes,omitempty"`
	ActualMinutes    *int          `json:"actual_minutes,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Verification     *Verification `json:"verification,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Matches reports whether q is a case-insensitive substring of the item's
// title or description. An empty query matches everything.
func (it Item) Matches(q string) bool {
	if q == "" {
		return true
	}
	return containsFold(it.Title, q) || containsFold(it.Description, q)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
