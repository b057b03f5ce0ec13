package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/logging"
	"github.com/aetherhq/aether/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics recording.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		logger := logging.WithTool(sc.Logger(), toolName)

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		args := request.GetArguments()
		owner := GetOwnerFromArgs(ctx, args)
		metrics.RecordToolInvocationWithOwner(ctx, toolName, status, logging.AnonymizeOwner(owner), duration)
		logger.Debug("tool invocation handled",
			logging.OwnerHash(owner),
			logging.Status(status),
			slog.Duration("duration", duration))

		return result, err
	}
}

// InstrumentedToolHandlerWithOperation is like InstrumentedToolHandler but
// also records the underlying calendar operation for more detailed metrics.
//
// This handler records both:
//   - MCP tool invocation metrics (mcp_tool_invocations_total, mcp_tool_duration_seconds)
//   - Calendar operation metrics (calendar_operations_total, calendar_operation_duration_seconds)
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithOperation("my_tool", "list", sc, handler))
func InstrumentedToolHandlerWithOperation(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		logger := logging.WithTool(sc.Logger(), toolName)

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		args := request.GetArguments()
		owner := GetOwnerFromArgs(ctx, args)
		metrics.RecordToolInvocationWithOwner(ctx, toolName, status, logging.AnonymizeOwner(owner), duration)
		metrics.RecordCalendarOperation(ctx, operation, status, duration)
		logger.Debug("tool invocation handled",
			logging.OwnerHash(owner),
			logging.Operation(operation),
			logging.Status(status),
			slog.Duration("duration", duration))

		return result, err
	}
}
