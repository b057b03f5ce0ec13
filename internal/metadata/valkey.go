package metadata

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// DefaultValkeyKeyPrefix is the prefix used when none is configured.
const DefaultValkeyKeyPrefix = "aether:meta:"

// ValkeyConfig holds configuration for the Valkey-backed metadata store.
type ValkeyConfig struct {
	// URL is the Valkey server address (e.g., "valkey.namespace.svc:6379").
	URL string

	// Password is the optional password for Valkey authentication.
	Password string

	// TLSEnabled enables TLS for Valkey connections.
	TLSEnabled bool

	// KeyPrefix is the prefix for all metadata keys (default: "aether:meta:").
	KeyPrefix string

	// DB is the Valkey database number (default: 0).
	DB int
}

// ValkeyStore is a Store implementation backed by Valkey. Rows are stored
// as JSON values under "<prefix><ownerID>:<eventID>". Last write wins,
// consistent with the provider's own semantics.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore connects to Valkey and returns a metadata store.
func NewValkeyStore(config ValkeyConfig) (*ValkeyStore, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("valkey URL is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultValkeyKeyPrefix
	}

	option := valkey.ClientOption{
		InitAddress: []string{config.URL},
		Password:    config.Password,
		SelectDB:    config.DB,
	}
	if config.TLSEnabled {
		option.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(option)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return &ValkeyStore{
		client: client,
		prefix: config.KeyPrefix,
	}, nil
}

// Close releases the underlying Valkey connection.
func (s *ValkeyStore) Close() {
	s.client.Close()
}

// Ping verifies the Valkey backend is reachable. Used by readiness probes.
func (s *ValkeyStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

func (s *ValkeyStore) key(eventID, ownerID string) string {
	return s.prefix + ownerID + ":" + eventID
}

// Find returns the row for (eventID, ownerID), or nil when absent.
func (s *ValkeyStore) Find(ctx context.Context, eventID, ownerID string) (*EventMetadata, error) {
	raw, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(eventID, ownerID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read metadata row: %w", err)
	}

	var row EventMetadata
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("failed to decode metadata row: %w", err)
	}
	return &row, nil
}

// FindMany returns the rows for the given event ids owned by ownerID.
// Missing ids are skipped.
func (s *ValkeyStore) FindMany(ctx context.Context, eventIDs []string, ownerID string) ([]EventMetadata, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(eventIDs))
	for i, eventID := range eventIDs {
		keys[i] = s.key(eventID, ownerID)
	}

	values, err := s.client.Do(ctx, s.client.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata rows: %w", err)
	}

	var rows []EventMetadata
	for _, value := range values {
		raw, err := value.ToString()
		if err != nil {
			// Nil entry for a missing key.
			continue
		}
		var row EventMetadata
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("failed to decode metadata row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Upsert creates or replaces the row for the record's key. A zero record
// deletes any existing row.
func (s *ValkeyStore) Upsert(ctx context.Context, meta EventMetadata) (*EventMetadata, error) {
	key := s.key(meta.EventID, meta.OwnerID)

	if meta.IsZero() {
		if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
			return nil, fmt.Errorf("failed to delete metadata row: %w", err)
		}
		return &meta, nil
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata row: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(string(payload)).Build()).Error(); err != nil {
		return nil, fmt.Errorf("failed to write metadata row: %w", err)
	}
	return &meta, nil
}

// Delete removes the row for (eventID, ownerID), if any.
func (s *ValkeyStore) Delete(ctx context.Context, eventID, ownerID string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.key(eventID, ownerID)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete metadata row: %w", err)
	}
	return nil
}
