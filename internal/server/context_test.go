package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhq/aether/internal/calendar"
	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/metadata"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	sc := NewServerContext(context.Background(), Capabilities{
		Provider:  calendar.NewFake(),
		Generator: &genai.Scripted{},
		Store:     metadata.NewMemoryStore(),
		StoreName: "memory",
	}, nil)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestServerContext_WiresService(t *testing.T) {
	sc := newTestServerContext(t)

	require.NotNil(t, sc.Service())
	assert.Equal(t, "memory", sc.Capabilities().StoreName)
	assert.NotNil(t, sc.Metrics(), "metrics must be safe without instrumentation")
}

func TestServerContext_Credentials(t *testing.T) {
	sc := newTestServerContext(t)

	sc.SetCredentialForOwner("default", "token-default")
	sc.SetCredentialForOwner("alice", "token-alice")

	assert.Equal(t, "token-alice", sc.CredentialForOwner("alice"))
	// Unknown owners fall back to the default credential
	assert.Equal(t, "token-default", sc.CredentialForOwner("bob"))
}

func TestServerContext_CredentialNeverLoggedVerbatim(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sc := NewServerContext(context.Background(), Capabilities{
		Provider:  calendar.NewFake(),
		Generator: &genai.Scripted{},
		Store:     metadata.NewMemoryStore(),
		StoreName: "memory",
	}, logger)
	t.Cleanup(func() { _ = sc.Shutdown() })

	sc.SetCredentialForOwner("alice", "super-secret-token")

	out := buf.String()
	assert.NotContains(t, out, "super-secret-token")
	assert.Contains(t, out, "[credential:18 chars]")
	assert.NotContains(t, out, "alice", "owner ids are logged hashed")
}

func TestServerContext_WriteEnabled(t *testing.T) {
	sc := newTestServerContext(t)

	assert.False(t, sc.WriteEnabled())
	sc.SetWriteEnabled(true)
	assert.True(t, sc.WriteEnabled())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	select {
	case <-sc.Context().Done():
	default:
		t.Error("expected context to be cancelled after shutdown")
	}

	// Shutdown is idempotent
	require.NoError(t, sc.Shutdown())
}

func TestSessionIDManager(t *testing.T) {
	m := NewSessionIDManagerWithTimeout(time.Hour)
	defer m.Stop()

	assert.Equal(t, "default", m.GetOwnerForSession("unknown"))

	m.SetOwnerForSession("session-1", "alice")
	assert.Equal(t, "alice", m.GetOwnerForSession("session-1"))

	assert.Len(t, m.ListSessions(), 1)

	m.RemoveSession("session-1")
	assert.Equal(t, "default", m.GetOwnerForSession("session-1"))
}

func TestSessionIDManager_ResolveSessionID(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	req, err := http.NewRequest(http.MethodPost, "/mcp", nil)
	require.NoError(t, err)

	_, err = m.ResolveSessionID(req)
	assert.ErrorIs(t, err, ErrNoAuthorizationHeader)

	req.Header.Set("Authorization", "Bearer token-a")
	idA, err := m.ResolveSessionID(req)
	require.NoError(t, err)

	// Stable for the same token
	idA2, err := m.ResolveSessionID(req)
	require.NoError(t, err)
	assert.Equal(t, idA, idA2)

	req.Header.Set("Authorization", "Bearer token-b")
	idB, err := m.ResolveSessionID(req)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)
}
