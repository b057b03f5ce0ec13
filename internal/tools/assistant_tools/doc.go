// Package assistant_tools registers the aether MCP tool surface.
//
// Tools:
//   - aether_chat: natural-language entry point into the assistant
//   - aether_list_events: merged view of provider events and private metadata
//   - aether_create_event: direct create with optional metadata
//   - aether_update_event: direct partial update (write mode only)
//   - aether_delete_event: direct delete with metadata cascade (write mode only)
//
// Handlers translate MCP arguments into assistant service calls and render
// text results. Argument errors and service failures become tool error
// results, never Go errors, so the MCP session stays healthy.
package assistant_tools
