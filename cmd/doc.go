// Package cmd implements the command-line interface for aether.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the calendar assistant tools
//   - chat: Send a single chat turn through the assistant pipeline
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
