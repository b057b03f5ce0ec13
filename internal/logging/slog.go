package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyIntent    = "intent"
	KeyOwnerHash = "owner_hash"
	KeyEventID   = "event_id"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyStore     = "store"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Intent returns a slog attribute for the interpreted chat intent.
func Intent(intent string) slog.Attr {
	return slog.String(KeyIntent, intent)
}

// EventID returns a slog attribute for a provider event id.
func EventID(id string) slog.Attr {
	return slog.String(KeyEventID, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeOwner returns a hashed representation of an owner id for logging
// purposes. This allows correlation of log entries without exposing PII.
func AnonymizeOwner(ownerID string) string {
	if ownerID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(ownerID))
	return "owner:" + hex.EncodeToString(hash[:8])
}

// OwnerHash returns a slog attribute with the anonymized owner id.
// This is a convenience function to reduce repetition in logging calls and
// ensure consistent attribute naming across the codebase.
//
// Usage:
//
//	logger.Info("chat turn handled", logging.OwnerHash(ownerID))
func OwnerHash(ownerID string) slog.Attr {
	return slog.String(KeyOwnerHash, AnonymizeOwner(ownerID))
}

// SanitizeCredential returns a masked version of an access credential for
// logging. It returns a length indicator without exposing any content, as
// even partial token prefixes can aid attacks.
func SanitizeCredential(credential string) string {
	if credential == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[credential:%d chars]", len(credential))
}
