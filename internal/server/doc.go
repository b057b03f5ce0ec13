// Package server provides the MCP server context, session management,
// health probes, and the metrics server for the aether application.
//
// # Key Components
//
// ServerContext wires the assistant service over its injected capabilities
// (calendar provider, language model generator, metadata store) and holds
// shared server state: per-owner credentials, the write-mode gate for
// destructive tools, and the instrumentation provider. Capabilities are
// chosen once at startup, live or fixture; request handling never branches
// on the environment.
//
// SessionIDManager handles multi-owner session tracking for HTTP transport.
// Bearer tokens are hashed into stable session IDs, enabling multiple users
// to share a single MCP server instance.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for
// Kubernetes probes. MetricsServer exposes Prometheus metrics on a
// dedicated port, isolated from application traffic.
package server
