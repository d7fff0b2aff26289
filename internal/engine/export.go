package engine

import (
	"time"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/colonyops/checkup/internal/core/stats"
)

// Snapshot is the exportable view of a checklist session: the checklist
// with its items, the derived stats, and the export instant. It is a plain
// structure safe for JSON encoding; round-tripping through encode/decode
// loses no field.
type Snapshot struct {
	Checklist  checklist.Checklist `json:"checklist"`
	Stats      stats.Stats         `json:"stats"`
	ExportedAt time.Time           `json:"exported_at"`
}

// BuildSnapshot derives a snapshot from a checklist. Pure and synchronous;
// stats are recomputed from the items passed in, never read from a cache.
func BuildSnapshot(cl checklist.Checklist, now time.Time) Snapshot {
	return Snapshot{
		Checklist:  cl,
		Stats:      stats.Compute(cl.Items),
		ExportedAt: now,
	}
}
