// Package instrumentation provides OpenTelemetry instrumentation for the
// aether MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, chat turns, language model
//     requests, calendar and metadata operations
//   - Distributed tracing for request flows and capability calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active user sessions
//
// Chat Pipeline Metrics:
//   - chat_turns_total: Counter of handled chat turns by intent and status
//   - chat_turn_duration_seconds: Histogram of end-to-end chat turn durations
//
// Language Model Metrics:
//   - llm_requests_total: Counter of model requests by model and status
//   - llm_request_duration_seconds: Histogram of model request durations
//
// Capability Metrics:
//   - calendar_operations_total: Counter of calendar provider operations by operation, status
//   - calendar_operation_duration_seconds: Histogram of provider operation durations
//   - metadata_operations_total: Counter of metadata store operations by store, operation, status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations (tool.<name>)
//   - Capability calls (calendar.<operation>, llm.<operation>, metadata.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: aether)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "aether",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//
//	// Record a chat turn
//	recorder.RecordChatTurn(ctx, "CREATE_EVENT", "success", time.Since(start))
//
//	// Record a calendar provider operation
//	recorder.RecordCalendarOperation(ctx, "list", "success", time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "aether_chat", "success", time.Since(start))
package instrumentation
