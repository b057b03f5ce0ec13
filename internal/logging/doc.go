// Package logging provides structured logging utilities for the aether application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (owner id anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "events.list")
//	logger.Info("listed events", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("chat turn handled", logging.OwnerHash(ownerID))
//
// # Security Considerations
//
// Owner ids are hashed to prevent PII leakage while allowing correlation.
// Access credentials are never logged directly.
package logging
