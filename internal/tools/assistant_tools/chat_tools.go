package assistant_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aetherhq/aether/internal/server"
	"github.com/aetherhq/aether/internal/tools/common"
)

func registerChatTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	chatTool := mcp.NewTool("aether_chat",
		mcp.WithDescription("Send a natural-language message to the calendar assistant. "+
			"The assistant interprets the message and creates or reads calendar events on your behalf."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The chat message, e.g. 'schedule a meeting with Jane tomorrow at 2pm'"),
		),
		mcp.WithString("owner",
			mcp.Description(ownerDescription),
		),
	)

	s.AddTool(chatTool, common.InstrumentedToolHandler("aether_chat", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleChat(ctx, request, sc)
		}))
}

func handleChat(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	message, ok := args["message"].(string)
	if !ok || message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}

	owner := common.GetOwnerFromArgs(ctx, args)
	credential := sc.CredentialForOwner(owner)

	// The chat path always yields a reply, never an error.
	reply := sc.Service().HandleChatTurn(ctx, owner, credential, message)

	return mcp.NewToolResultText(reply), nil
}
