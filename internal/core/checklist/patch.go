package checklist

import (
	"fmt"
	"time"
)

// Patch is the closed set of single-item mutations the engine accepts.
// Nil pointer fields are left untouched by an apply; ToggleCompleted flips
// the completion state and lets the store derive CompletedAt.
type Patch struct {
	ToggleCompleted bool          `json:"toggle_completed,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	Verification    *Verification `json:"verification,omitempty"`
	ActualMinutes   *int          `json:"actual_minutes,omitempty"`
}

// TogglePatch returns a patch that flips completion state.
func TogglePatch() Patch {
	return Patch{ToggleCompleted: true}
}

// NotesPatch returns a patch that replaces the item's notes.
func NotesPatch(notes string) Patch {
	return Patch{Notes: &notes}
}

// VerificationPatch returns a patch that attaches a verification with the
// given method, initialized to pending.
func VerificationPatch(method VerificationMethod) Patch {
	return Patch{Verification: &Verification{Method: method, Status: VerificationPending}}
}

// ActualMinutesPatch returns a patch recording time actually spent.
func ActualMinutesPatch(minutes int) Patch {
	return Patch{ActualMinutes: &minutes}
}

// Empty reports whether the patch carries no mutation at all.
func (p Patch) Empty() bool {
	return !p.ToggleCompleted && p.Notes == nil && p.Verification == nil && p.ActualMinutes == nil
}

// Validate checks patch shape. Shape violations are programmer errors and
// fail fast before any store is touched.
func (p Patch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("%w: patch is empty", ErrInvalidPatch)
	}
	if p.Verification != nil {
		if !p.Verification.Method.Valid() {
			return fmt.Errorf("%w: unknown verification method %q", ErrInvalidPatch, p.Verification.Method)
		}
		if !p.Verification.Status.Valid() {
			return fmt.Errorf("%w: unknown verification status %q", ErrInvalidPatch, p.Verification.Status)
		}
	}
	if p.ActualMinutes != nil && *p.ActualMinutes < 0 {
		return fmt.Errorf("%w: actual minutes must be >= 0", ErrInvalidPatch)
	}
	return nil
}

// Apply merges the patch into a copy of the item and returns it. Completion
// transitions derive CompletedAt from now: false->true sets it, true->false
// clears it. Apply assumes the patch has been validated.
func (p Patch) Apply(it Item, now time.Time) Item {
	if p.ToggleCompleted {
		it.IsCompleted = !it.IsCompleted
		if it.IsCompleted {
			at := now
			it.CompletedAt = &at
		} else {
			it.CompletedAt = nil
		}
	}
	if p.Notes != nil {
		it.Notes = *p.Notes
	}
	if p.Verification != nil {
		v := *p.Verification
		if v.VerifiedAt == nil && v.Status != VerificationPending {
			at := now
			v.VerifiedAt = &at
		}
		it.Verification = &v
	}
	if p.ActualMinutes != nil {
		minutes := *p.ActualMinutes
		it.ActualMinutes = &minutes
	}
	it.UpdatedAt = now
	return it
}
