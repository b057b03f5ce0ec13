package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aetherhq/aether/internal/assistant"
	"github.com/aetherhq/aether/internal/calendar"
	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/logging"
	"github.com/aetherhq/aether/internal/metadata"
)

// Capabilities bundles the injected collaborators the assistant core runs
// on. They are selected once at wiring time (live or fixture); nothing
// branches on the environment per call.
type Capabilities struct {
	Provider  calendar.Provider
	Generator genai.Generator
	Store     metadata.Store

	// StoreName labels the metadata backend in metrics (memory, valkey).
	StoreName string
}

// ServerContext holds the shared state for the MCP server: the wired
// assistant service, its capabilities, per-owner credentials, and the
// instrumentation recorder.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	capabilities Capabilities
	service      *assistant.Service

	instrumentationProvider *instrumentation.Provider

	logger *slog.Logger

	// credentials maps owner id to the provider credential used on their
	// behalf. For stdio transport there is a single "default" owner.
	credentials map[string]string

	// writeEnabled gates the destructive MCP tools (update, delete).
	writeEnabled bool

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context over the given capabilities and
// wires the assistant service on top of them.
func NewServerContext(ctx context.Context, caps Capabilities, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		capabilities: caps,
		service: assistant.NewService(caps.Provider, caps.Generator, caps.Store, logger,
			assistant.WithStoreName(caps.StoreName)),
		logger:      logger,
		credentials: make(map[string]string),
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the wired assistant service.
func (sc *ServerContext) Service() *assistant.Service {
	return sc.service
}

// Capabilities returns the injected capability set.
func (sc *ServerContext) Capabilities() Capabilities {
	return sc.capabilities
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetInstrumentationProvider attaches the instrumentation provider and
// hands its metrics recorder to the assistant service, which is wired
// before instrumentation exists.
func (sc *ServerContext) SetInstrumentationProvider(p *instrumentation.Provider) {
	sc.mu.Lock()
	sc.instrumentationProvider = p
	sc.mu.Unlock()

	if p != nil {
		sc.service.SetInstrumentation(p.Metrics())
	}
}

// InstrumentationProvider returns the attached instrumentation provider,
// or nil when instrumentation is not configured.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Metrics returns the metrics recorder. Always safe to call; returns a
// no-op recorder when instrumentation is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if sc.instrumentationProvider == nil {
		return &instrumentation.Metrics{}
	}
	return sc.instrumentationProvider.Metrics()
}

// SetWriteEnabled enables or disables the destructive MCP tools.
func (sc *ServerContext) SetWriteEnabled(enabled bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.writeEnabled = enabled
}

// WriteEnabled reports whether destructive MCP tools are enabled.
func (sc *ServerContext) WriteEnabled() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.writeEnabled
}

// SetCredentialForOwner associates a provider credential with an owner id.
// The credential itself is never logged.
func (sc *ServerContext) SetCredentialForOwner(ownerID, credential string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.credentials[ownerID] = credential

	sc.logger.Debug("owner credential registered",
		logging.OwnerHash(ownerID),
		slog.String("credential", logging.SanitizeCredential(credential)))
}

// CredentialForOwner returns the provider credential for an owner id.
// Falls back to the "default" owner's credential when the owner has none.
func (sc *ServerContext) CredentialForOwner(ownerID string) string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if credential, ok := sc.credentials[ownerID]; ok {
		return credential
	}
	return sc.credentials["default"]
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
