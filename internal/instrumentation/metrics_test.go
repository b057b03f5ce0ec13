package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)
}

func TestMetrics_RecordChatTurn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordChatTurn(ctx, "CREATE_EVENT", StatusSuccess, 800*time.Millisecond)
	metrics.RecordChatTurn(ctx, "READ_EVENTS", StatusSuccess, 300*time.Millisecond)
	metrics.RecordChatTurn(ctx, "GENERAL_QUERY", StatusError, 100*time.Millisecond)
}

func TestMetrics_RecordLLMRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordLLMRequest(ctx, "models/gemini-pro", StatusSuccess, 1200*time.Millisecond)
	metrics.RecordLLMRequest(ctx, "models/gemini-pro", StatusError, 30*time.Second)
}

func TestMetrics_RecordCalendarOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordCalendarOperation(ctx, "list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordCalendarOperation(ctx, "create", StatusError, 500*time.Millisecond)
	metrics.RecordCalendarOperation(ctx, "delete", StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordMetadataOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordMetadataOperation(ctx, "valkey", "upsert", StatusSuccess)
	metrics.RecordMetadataOperation(ctx, "memory", "find", StatusSuccess)
	metrics.RecordMetadataOperation(ctx, "valkey", "delete", StatusError)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordToolInvocation(ctx, "aether_chat", StatusSuccess, 900*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "aether_list_events", StatusError, 150*time.Millisecond)
}

func TestMetrics_ActiveSessions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.IncrementActiveSessions(ctx)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}

func TestMetrics_NoopWhenUninitialized(t *testing.T) {
	ctx := context.Background()
	metrics := &Metrics{}

	// All recorders must be safe on a zero-value Metrics
	metrics.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
	metrics.RecordChatTurn(ctx, "CREATE_EVENT", StatusSuccess, time.Millisecond)
	metrics.RecordLLMRequest(ctx, "m", StatusSuccess, time.Millisecond)
	metrics.RecordCalendarOperation(ctx, "list", StatusSuccess, time.Millisecond)
	metrics.RecordMetadataOperation(ctx, "memory", "find", StatusSuccess)
	metrics.RecordToolInvocation(ctx, "aether_chat", StatusSuccess, time.Millisecond)
	metrics.RecordToolInvocationWithOwner(ctx, "aether_chat", StatusSuccess, "owner:abcd1234", time.Millisecond)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}
