package assistant_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aetherhq/aether/internal/assistant"
	"github.com/aetherhq/aether/internal/metadata"
	"github.com/aetherhq/aether/internal/server"
	"github.com/aetherhq/aether/internal/tools/common"
)

func registerListEventsTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listEventsTool := mcp.NewTool("aether_list_events",
		mcp.WithDescription("List calendar events within a time range, enriched with your private metadata (importance, tags, nag date)"),
		mcp.WithString("owner",
			mcp.Description(ownerDescription),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the range (RFC3339 format, e.g., '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the range (RFC3339 format, e.g., '2025-01-31T23:59:59Z')"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithOperation("aether_list_events", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))
}

func registerCreateEventTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createEventTool := mcp.NewTool("aether_create_event",
		mcp.WithDescription("Create a calendar event with optional private metadata (importance, tags, nag date)"),
		mcp.WithString("owner",
			mcp.Description(ownerDescription),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format, e.g., '2025-01-15T14:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339 format, e.g., '2025-01-15T15:00:00Z')"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithArray("guests",
			mcp.Description("Guest email addresses"),
		),
		mcp.WithString("importance",
			mcp.Description("Private importance: 'low', 'medium', 'high', or 'urgent'"),
		),
		mcp.WithArray("tags",
			mcp.Description("Private tags"),
		),
		mcp.WithString("nagDate",
			mcp.Description("Private reminder date (RFC3339 format)"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithOperation("aether_create_event", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))
}

func registerUpdateEventTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	updateEventTool := mcp.NewTool("aether_update_event",
		mcp.WithDescription("Update an existing calendar event and/or its private metadata. Omitted fields are left unchanged."),
		mcp.WithString("owner",
			mcp.Description(ownerDescription),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to update"),
		),
		mcp.WithString("title",
			mcp.Description("New event title"),
		),
		mcp.WithString("start",
			mcp.Description("New start time (RFC3339 format)"),
		),
		mcp.WithString("end",
			mcp.Description("New end time (RFC3339 format)"),
		),
		mcp.WithString("description",
			mcp.Description("New event description"),
		),
		mcp.WithString("location",
			mcp.Description("New event location"),
		),
		mcp.WithArray("guests",
			mcp.Description("New guest email addresses (replaces the existing list)"),
		),
		mcp.WithString("importance",
			mcp.Description("New private importance; pass an empty string to clear it"),
		),
		mcp.WithArray("tags",
			mcp.Description("New private tags (replaces the existing list); pass an empty array to clear them"),
		),
		mcp.WithString("nagDate",
			mcp.Description("New private reminder date (RFC3339 format)"),
		),
	)

	s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithOperation("aether_update_event", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))
}

func registerDeleteEventTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	deleteEventTool := mcp.NewTool("aether_delete_event",
		mcp.WithDescription("Delete a calendar event and its private metadata"),
		mcp.WithString("owner",
			mcp.Description(ownerDescription),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithOperation("aether_delete_event", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	owner := common.GetOwnerFromArgs(ctx, args)

	timeMinStr, ok := args["timeMin"].(string)
	if !ok || timeMinStr == "" {
		return mcp.NewToolResultError("timeMin is required"), nil
	}
	timeMin, err := time.Parse(time.RFC3339, timeMinStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMin format: %v", err)), nil
	}

	timeMaxStr, ok := args["timeMax"].(string)
	if !ok || timeMaxStr == "" {
		return mcp.NewToolResultError("timeMax is required"), nil
	}
	timeMax, err := time.Parse(time.RFC3339, timeMaxStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMax format: %v", err)), nil
	}

	credential := sc.CredentialForOwner(owner)

	events, err := sc.Service().ListEvents(ctx, owner, credential, timeMin, timeMax)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d events:\n\n", len(events))
	for i, event := range events {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, event.Title)
		formatMergedEvent(&sb, "   ", event)
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	owner := common.GetOwnerFromArgs(ctx, args)

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
	}

	importance, err := metadata.ParseImportance(common.GetStringArg(args, "importance", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := assistant.CreateEventRequest{
		Title:       title,
		Start:       start,
		End:         end,
		Description: common.GetStringArg(args, "description", ""),
		Location:    common.GetStringArg(args, "location", ""),
		Guests:      common.GetStringSliceArg(args, "guests"),
		Importance:  importance,
		Tags:        common.GetStringSliceArg(args, "tags"),
	}

	if nagStr := common.GetStringArg(args, "nagDate", ""); nagStr != "" {
		nag, err := time.Parse(time.RFC3339, nagStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid nagDate format: %v", err)), nil
		}
		req.NagDate = &nag
	}

	credential := sc.CredentialForOwner(owner)

	created, err := sc.Service().CreateEvent(ctx, owner, credential, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Created event: %s\n", created.Title)
	formatMergedEvent(&sb, "", *created)

	return mcp.NewToolResultText(sb.String()), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	owner := common.GetOwnerFromArgs(ctx, args)

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	var req assistant.UpdateEventRequest

	if title, ok := args["title"].(string); ok && title != "" {
		req.Title = &title
	}
	if desc, ok := args["description"].(string); ok {
		req.Description = &desc
	}
	if loc, ok := args["location"].(string); ok {
		req.Location = &loc
	}
	if startStr, ok := args["start"].(string); ok && startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
		}
		req.Start = &start
	}
	if endStr, ok := args["end"].(string); ok && endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
		}
		req.End = &end
	}
	if _, exists := args["guests"]; exists {
		guests := common.GetStringSliceArg(args, "guests")
		if guests == nil {
			guests = []string{}
		}
		req.Guests = guests
	}

	// Present-but-empty importance clears the field.
	if raw, exists := args["importance"]; exists {
		str, ok := raw.(string)
		if !ok {
			return mcp.NewToolResultError("importance must be a string"), nil
		}
		importance, err := metadata.ParseImportance(str)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		req.Importance = &importance
	}
	if _, exists := args["tags"]; exists {
		tags := common.GetStringSliceArg(args, "tags")
		if tags == nil {
			tags = []string{}
		}
		req.Tags = tags
	}
	if nagStr := common.GetStringArg(args, "nagDate", ""); nagStr != "" {
		nag, err := time.Parse(time.RFC3339, nagStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid nagDate format: %v", err)), nil
		}
		req.NagDate = &nag
	}

	credential := sc.CredentialForOwner(owner)

	updated, err := sc.Service().UpdateEvent(ctx, owner, credential, eventID, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Updated event: %s\n", updated.Title)
	formatMergedEvent(&sb, "", *updated)

	return mcp.NewToolResultText(sb.String()), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	owner := common.GetOwnerFromArgs(ctx, args)

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	credential := sc.CredentialForOwner(owner)

	if err := sc.Service().DeleteEvent(ctx, owner, credential, eventID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted event %s", eventID)), nil
}

// formatMergedEvent renders a merged event's fields, one per line, with the
// given indent. Absent metadata fields are omitted.
func formatMergedEvent(sb *strings.Builder, indent string, event metadata.MergedEvent) {
	fmt.Fprintf(sb, "%sID: %s\n", indent, event.ID)
	fmt.Fprintf(sb, "%sStart: %s\n", indent, event.Start.Format(time.RFC3339))
	fmt.Fprintf(sb, "%sEnd: %s\n", indent, event.End.Format(time.RFC3339))
	if event.Location != "" {
		fmt.Fprintf(sb, "%sLocation: %s\n", indent, event.Location)
	}
	if len(event.Guests) > 0 {
		fmt.Fprintf(sb, "%sGuests: %s\n", indent, strings.Join(event.Guests, ", "))
	}
	if event.Importance != "" {
		fmt.Fprintf(sb, "%sImportance: %s\n", indent, event.Importance)
	}
	if len(event.Tags) > 0 {
		fmt.Fprintf(sb, "%sTags: %s\n", indent, strings.Join(event.Tags, ", "))
	}
	if event.NagDate != nil {
		fmt.Fprintf(sb, "%sNag date: %s\n", indent, event.NagDate.Format(time.RFC3339))
	}
}
