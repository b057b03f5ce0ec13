package metadata

import (
	"fmt"
	"time"
)

// Importance classifies how much an event matters to its owner.
type Importance string

// Importance levels, ordered low to urgent. The zero value means unset.
const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
	ImportanceUrgent Importance = "urgent"
)

// ParseImportance validates and normalizes an importance string. The empty
// string parses to the unset zero value.
func ParseImportance(s string) (Importance, error) {
	switch Importance(s) {
	case "", ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceUrgent:
		return Importance(s), nil
	}
	return "", fmt.Errorf("invalid importance %q", s)
}

// EventMetadata is the locally-owned enrichment record for a provider event.
// It is keyed by (provider event id, owner id) and exists only while at
// least one optional field is set.
type EventMetadata struct {
	EventID    string     `json:"eventId"`
	OwnerID    string     `json:"ownerId"`
	Importance Importance `json:"importance,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	NagDate    *time.Time `json:"nagDate,omitempty"`
}

// IsZero reports whether every optional field is empty. A zero record must
// not be persisted; upserting one deletes any existing row instead.
func (m EventMetadata) IsZero() bool {
	return m.Importance == "" && len(m.Tags) == 0 && m.NagDate == nil
}
