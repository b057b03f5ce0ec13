// Package metadata implements the locally-owned enrichment layer for
// provider calendar events.
//
// EventMetadata rows carry the fields the calendar provider does not store:
// importance, tags and a personal follow-up ("nag") date. Rows are keyed by
// (provider event id, owner id) and exist only while at least one field is
// set. The provider remains the system of record for event existence;
// metadata never resurrects a deleted event.
//
// Two Store implementations exist: MemoryStore for development mode and
// tests, and ValkeyStore for durable deployments. Merge combines provider
// events with metadata rows into the MergedEvent read view and is a pure
// function, so it is independently testable.
package metadata
