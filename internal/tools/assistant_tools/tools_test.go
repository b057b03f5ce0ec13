package assistant_tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhq/aether/internal/calendar"
	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/metadata"
	"github.com/aetherhq/aether/internal/server"
)

func newTestContext(t *testing.T, gen genai.Generator) *server.ServerContext {
	t.Helper()
	if gen == nil {
		gen = &genai.Scripted{}
	}
	sc := server.NewServerContext(context.Background(), server.Capabilities{
		Provider:  calendar.NewFake(),
		Generator: gen,
		Store:     metadata.NewMemoryStore(),
		StoreName: "memory",
	}, nil)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleChat_RequiresMessage(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleChat(context.Background(), callRequest(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleChat_GeneralQuery(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleChat(context.Background(), callRequest(map[string]any{
		"message": "who are you?",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "I'm Aether")
}

func TestHandleCreateAndListEvents(t *testing.T) {
	sc := newTestContext(t, nil)
	ctx := context.Background()

	result, err := handleCreateEvent(ctx, callRequest(map[string]any{
		"owner":      "alice",
		"title":      "Budget Review",
		"start":      "2025-07-21T14:00:00Z",
		"end":        "2025-07-21T15:00:00Z",
		"location":   "Room 4",
		"importance": "high",
		"tags":       []any{"finance", "q3"},
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	created := resultText(t, result)
	assert.Contains(t, created, "Created event: Budget Review")
	assert.Contains(t, created, "Importance: high")
	assert.Contains(t, created, "Tags: finance, q3")

	result, err = handleListEvents(ctx, callRequest(map[string]any{
		"owner":   "alice",
		"timeMin": "2025-07-21T00:00:00Z",
		"timeMax": "2025-07-22T00:00:00Z",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	listed := resultText(t, result)
	assert.Contains(t, listed, "Found 1 events")
	assert.Contains(t, listed, "Budget Review")
	assert.Contains(t, listed, "Importance: high")
	assert.Contains(t, listed, "Location: Room 4")
}

func TestHandleListEvents_MetadataScopedToOwner(t *testing.T) {
	sc := newTestContext(t, nil)
	ctx := context.Background()

	_, err := handleCreateEvent(ctx, callRequest(map[string]any{
		"owner":      "alice",
		"title":      "Private Prep",
		"start":      "2025-07-21T09:00:00Z",
		"end":        "2025-07-21T10:00:00Z",
		"importance": "urgent",
	}), sc)
	require.NoError(t, err)

	result, err := handleListEvents(ctx, callRequest(map[string]any{
		"owner":   "bob",
		"timeMin": "2025-07-21T00:00:00Z",
		"timeMax": "2025-07-22T00:00:00Z",
	}), sc)
	require.NoError(t, err)

	listed := resultText(t, result)
	assert.Contains(t, listed, "Private Prep")
	assert.NotContains(t, listed, "Importance")
}

func TestHandleCreateEvent_Validation(t *testing.T) {
	sc := newTestContext(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing title", map[string]any{
			"start": "2025-07-21T14:00:00Z", "end": "2025-07-21T15:00:00Z",
		}},
		{"bad start", map[string]any{
			"title": "x", "start": "tomorrow", "end": "2025-07-21T15:00:00Z",
		}},
		{"bad importance", map[string]any{
			"title": "x", "start": "2025-07-21T14:00:00Z", "end": "2025-07-21T15:00:00Z",
			"importance": "critical",
		}},
		{"end before start", map[string]any{
			"title": "x", "start": "2025-07-21T15:00:00Z", "end": "2025-07-21T14:00:00Z",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleCreateEvent(ctx, callRequest(tt.args), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestHandleUpdateEvent_ClearsMetadata(t *testing.T) {
	sc := newTestContext(t, nil)
	ctx := context.Background()

	result, err := handleCreateEvent(ctx, callRequest(map[string]any{
		"title":      "Sync",
		"start":      "2025-07-21T14:00:00Z",
		"end":        "2025-07-21T15:00:00Z",
		"importance": "low",
	}), sc)
	require.NoError(t, err)
	eventID := extractField(t, resultText(t, result), "ID: ")

	result, err = handleUpdateEvent(ctx, callRequest(map[string]any{
		"eventId":    eventID,
		"title":      "Weekly Sync",
		"importance": "",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	updated := resultText(t, result)
	assert.Contains(t, updated, "Updated event: Weekly Sync")
	assert.NotContains(t, updated, "Importance")

	row, err := sc.Capabilities().Store.Find(ctx, eventID, "default")
	require.NoError(t, err)
	assert.Nil(t, row, "clearing the only metadata field should delete the row")
}

func TestHandleDeleteEvent_CascadesMetadata(t *testing.T) {
	sc := newTestContext(t, nil)
	ctx := context.Background()

	result, err := handleCreateEvent(ctx, callRequest(map[string]any{
		"title":      "Doomed",
		"start":      "2025-07-21T14:00:00Z",
		"end":        "2025-07-21T15:00:00Z",
		"importance": "high",
		"nagDate":    "2025-07-20T09:00:00Z",
	}), sc)
	require.NoError(t, err)
	eventID := extractField(t, resultText(t, result), "ID: ")

	result, err = handleDeleteEvent(ctx, callRequest(map[string]any{
		"eventId": eventID,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	row, err := sc.Capabilities().Store.Find(ctx, eventID, "default")
	require.NoError(t, err)
	assert.Nil(t, row)

	events, err := sc.Capabilities().Provider.List(ctx, "", time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 22, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHandleDeleteEvent_UnknownID(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleDeleteEvent(context.Background(), callRequest(map[string]any{
		"eventId": "missing",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// extractField pulls the value following the given prefix out of a
// formatted tool result.
func extractField(t *testing.T, text, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("field %q not found in %q", prefix, text)
	return ""
}
