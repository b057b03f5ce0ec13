package assistant_tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aetherhq/aether/internal/server"
)

// ownerDescription documents the shared owner argument.
const ownerDescription = "Owner id scoping private event metadata (default: 'default'). " +
	"Each owner sees only their own importance, tags, and nag dates."

// RegisterAssistantTools registers the aether tool surface with the MCP
// server: the chat entry point plus the direct CRUD tools. The update and
// delete tools are registered only when write mode is enabled.
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	registerChatTool(s, sc)
	registerListEventsTool(s, sc)
	registerCreateEventTool(s, sc)

	if sc.WriteEnabled() {
		registerUpdateEventTool(s, sc)
		registerDeleteEventTool(s, sc)
	}

	return nil
}
