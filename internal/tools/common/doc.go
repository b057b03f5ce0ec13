// Package common provides shared helpers for MCP tool handlers: owner and
// argument extraction, and instrumentation wrappers that record tool
// invocation metrics around a handler.
package common
