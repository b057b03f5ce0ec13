package metadata

import (
	"time"

	"github.com/aetherhq/aether/internal/calendar"
)

// MergedEvent is the denormalized read view: provider event fields plus the
// locally-owned metadata fields flattened in. It is never persisted.
type MergedEvent struct {
	calendar.Event
	Importance Importance
	Tags       []string
	NagDate    *time.Time
}

// Merge combines provider events with metadata rows into merged views.
//
// The provider is authoritative for existence: the result contains exactly
// one entry per provider event, in the order received, and metadata rows
// without a matching provider event are dropped. Events without a matching
// row keep importance/tags/nag unset. Merge is a pure function of its
// inputs; it performs no I/O.
func Merge(events []calendar.Event, rows []EventMetadata) []MergedEvent {
	byEventID := make(map[string]EventMetadata, len(rows))
	for _, row := range rows {
		byEventID[row.EventID] = row
	}

	merged := make([]MergedEvent, 0, len(events))
	for _, event := range events {
		m := MergedEvent{Event: event}
		if row, ok := byEventID[event.ID]; ok {
			m.Importance = row.Importance
			m.Tags = row.Tags
			m.NagDate = row.NagDate
		}
		merged = append(merged, m)
	}
	return merged
}
