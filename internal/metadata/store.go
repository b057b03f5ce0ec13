package metadata

import (
	"context"
	"sync"
)

// Store persists EventMetadata rows keyed by (provider event id, owner id).
//
// Find returns nil without error when no row exists. Upsert creates or
// replaces the row for the record's key; upserting a zero record deletes
// any existing row, so empty rows never persist. Delete is a no-op for
// missing rows.
type Store interface {
	Find(ctx context.Context, eventID, ownerID string) (*EventMetadata, error)
	FindMany(ctx context.Context, eventIDs []string, ownerID string) ([]EventMetadata, error)
	Upsert(ctx context.Context, meta EventMetadata) (*EventMetadata, error)
	Delete(ctx context.Context, eventID, ownerID string) error
}

// MemoryStore is an in-memory Store implementation used for development
// mode and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]EventMetadata
}

// NewMemoryStore creates an empty in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]EventMetadata),
	}
}

func memoryKey(eventID, ownerID string) string {
	return ownerID + "\x00" + eventID
}

// Find returns the row for (eventID, ownerID), or nil when absent.
func (s *MemoryStore) Find(ctx context.Context, eventID, ownerID string) (*EventMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if row, ok := s.rows[memoryKey(eventID, ownerID)]; ok {
		return &row, nil
	}
	return nil, nil
}

// FindMany returns the rows for the given event ids owned by ownerID.
// Missing ids are skipped.
func (s *MemoryStore) FindMany(ctx context.Context, eventIDs []string, ownerID string) ([]EventMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []EventMetadata
	for _, eventID := range eventIDs {
		if row, ok := s.rows[memoryKey(eventID, ownerID)]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Upsert creates or replaces the row for the record's key. A zero record
// deletes any existing row.
func (s *MemoryStore) Upsert(ctx context.Context, meta EventMetadata) (*EventMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(meta.EventID, meta.OwnerID)
	if meta.IsZero() {
		delete(s.rows, key)
		return &meta, nil
	}
	s.rows[key] = meta
	return &meta, nil
}

// Delete removes the row for (eventID, ownerID), if any.
func (s *MemoryStore) Delete(ctx context.Context, eventID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, memoryKey(eventID, ownerID))
	return nil
}
