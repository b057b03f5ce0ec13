package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aetherhq/aether/internal/calendar"
	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/instrumentation"
	"github.com/aetherhq/aether/internal/metadata"
	"github.com/aetherhq/aether/internal/server"
	"github.com/aetherhq/aether/internal/tools/assistant_tools"
)

// CapabilityConfig selects the capability set the assistant runs on.
// Dev mode wires fixtures; otherwise the live Google and Gemini backends
// are used.
type CapabilityConfig struct {
	// Dev selects the fixture capabilities (fake calendar, scripted
	// generator, in-memory metadata store). No credentials required.
	Dev bool

	// GeminiAPIKey authenticates the Gemini generator (live mode).
	GeminiAPIKey string

	// GeminiModel is the Gemini model name (default: models/gemini-pro).
	GeminiModel string

	// GoogleAccessToken is the calendar credential for the default owner.
	GoogleAccessToken string

	// CalendarID is the Google calendar to operate on (default: "primary").
	CalendarID string

	// TimeZone is attached to event times written to the provider.
	TimeZone string

	// MetadataStore is the metadata backend type: "memory" or "valkey".
	MetadataStore string

	// Valkey configuration (used when MetadataStore is "valkey").
	Valkey metadata.ValkeyConfig
}

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		transport        string
		httpAddr         string
		yolo             bool
		devMode          bool
		disableStreaming bool
		// Capability configuration
		geminiAPIKey      string
		geminiModel       string
		googleAccessToken string
		calendarID        string
		timeZone          string
		// Metadata storage options
		metadataStore   string
		valkeyURL       string
		valkeyPassword  string
		valkeyTLS       bool
		valkeyKeyPrefix string
		valkeyDB        int
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide calendar
assistant tools for AI clients.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode: update and delete
  tools are not registered. Use --yolo to enable write operations.

Development Mode:
  Use --dev to run against fixture capabilities (fake calendar, scripted
  generator, in-memory metadata). No credentials required.

Credentials (live mode):
  --gemini-api-key flag OR GEMINI_API_KEY env var (required)
  --google-access-token flag OR GOOGLE_ACCESS_TOKEN env var`,
		RunE: func(cmd *cobra.Command, args []string) error {
			capConfig := CapabilityConfig{
				Dev:               devMode,
				GeminiAPIKey:      geminiAPIKey,
				GeminiModel:       geminiModel,
				GoogleAccessToken: googleAccessToken,
				CalendarID:        calendarID,
				TimeZone:          timeZone,
				MetadataStore:     metadataStore,
				Valkey: metadata.ValkeyConfig{
					URL:        valkeyURL,
					Password:   valkeyPassword,
					TLSEnabled: valkeyTLS,
					KeyPrefix:  valkeyKeyPrefix,
					DB:         valkeyDB,
				},
			}

			// Load credentials and storage config from environment
			// variables if not set via flags
			loadCapabilityEnvVars(cmd, &capConfig)

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, httpAddr, yolo, disableStreaming, capConfig, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (event update and deletion). Default is read-only mode.")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Run against fixture capabilities (fake calendar, scripted generator, in-memory metadata)")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	// Capability flags
	cmd.Flags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key for intent extraction. Can also use GEMINI_API_KEY env var.")
	cmd.Flags().StringVar(&geminiModel, "gemini-model", genai.DefaultGeminiModel, "Gemini model used for intent extraction")
	cmd.Flags().StringVar(&googleAccessToken, "google-access-token", "", "Google Calendar access token for the default owner. Can also use GOOGLE_ACCESS_TOKEN env var.")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "primary", "Google calendar to operate on")
	cmd.Flags().StringVar(&timeZone, "time-zone", "UTC", "Time zone attached to event times written to the provider")

	// Metadata storage flags
	cmd.Flags().StringVar(&metadataStore, "metadata-store", "memory", "Metadata storage type: memory or valkey. Can also use METADATA_STORE env var.")
	cmd.Flags().StringVar(&valkeyURL, "valkey-url", "", "Valkey server address (e.g., valkey.namespace.svc:6379). Can also use VALKEY_URL env var.")
	cmd.Flags().StringVar(&valkeyPassword, "valkey-password", "", "Valkey authentication password. Can also use VALKEY_PASSWORD env var.")
	cmd.Flags().BoolVar(&valkeyTLS, "valkey-tls", false, "Enable TLS for Valkey connections. Can also use VALKEY_TLS_ENABLED env var.")
	cmd.Flags().StringVar(&valkeyKeyPrefix, "valkey-key-prefix", metadata.DefaultValkeyKeyPrefix, "Prefix for all Valkey keys. Can also use VALKEY_KEY_PREFIX env var.")
	cmd.Flags().IntVar(&valkeyDB, "valkey-db", 0, "Valkey database number. Can also use VALKEY_DB env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, yolo bool, disableStreaming bool, capConfig CapabilityConfig, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Log to stderr: stdout carries the MCP protocol on stdio transport
	setupLogger(debugMode)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server stopped with error: %v", err)
			}
		}()
		log.Printf("Metrics server starting on %s", metricsServer.Addr())
	}

	// Wire the capability set (live backends or dev fixtures)
	caps, cleanup, err := buildCapabilities(shutdownCtx, capConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	serverContext := server.NewServerContext(shutdownCtx, caps, slog.Default())
	if provider.Enabled() {
		serverContext.SetInstrumentationProvider(provider)
	}
	serverContext.SetWriteEnabled(yolo)
	if capConfig.GoogleAccessToken != "" {
		serverContext.SetCredentialForOwner("default", capConfig.GoogleAccessToken)
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("aether", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Log the mode for visibility (only for non-stdio transports)
	if transport != "stdio" {
		if yolo {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		} else {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		}
	}

	if err := assistant_tools.RegisterAssistantTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register assistant tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting aether MCP server with %s transport...\n", transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr, disableStreaming, metricsConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// setupLogger installs the process-wide slog logger. Logs always go to
// stderr so the stdio transport keeps stdout clean for the protocol.
func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// buildCapabilities wires the capability set once. The returned cleanup
// function releases backend connections and must be called on shutdown.
func buildCapabilities(ctx context.Context, config CapabilityConfig) (server.Capabilities, func(), error) {
	noop := func() {}

	if config.Dev {
		return server.Capabilities{
			Provider:  calendar.NewFake(),
			Generator: &genai.Scripted{},
			Store:     metadata.NewMemoryStore(),
			StoreName: "memory",
		}, noop, nil
	}

	switch config.MetadataStore {
	case "", "memory", "valkey":
	default:
		return server.Capabilities{}, noop, fmt.Errorf("unsupported metadata store type: %s (supported: memory, valkey)", config.MetadataStore)
	}

	if config.GeminiAPIKey == "" {
		return server.Capabilities{}, noop, fmt.Errorf("gemini API key is required (use --gemini-api-key or GEMINI_API_KEY, or --dev for fixtures)")
	}

	generator, err := genai.NewGemini(ctx, config.GeminiAPIKey, config.GeminiModel)
	if err != nil {
		return server.Capabilities{}, noop, fmt.Errorf("failed to create Gemini generator: %w", err)
	}

	provider := calendar.NewGoogleProvider(
		calendar.WithCalendarID(config.CalendarID),
		calendar.WithTimeZone(config.TimeZone),
	)

	switch config.MetadataStore {
	case "", "memory":
		return server.Capabilities{
			Provider:  provider,
			Generator: generator,
			Store:     metadata.NewMemoryStore(),
			StoreName: "memory",
		}, noop, nil
	default:
		store, err := metadata.NewValkeyStore(config.Valkey)
		if err != nil {
			return server.Capabilities{}, noop, fmt.Errorf("failed to create Valkey metadata store: %w", err)
		}
		return server.Capabilities{
			Provider:  provider,
			Generator: generator,
			Store:     store,
			StoreName: "valkey",
		}, store.Close, nil
	}
}

// loadCapabilityEnvVars loads capability configuration from environment
// variables. Environment variables only override flag values when the flag
// was not explicitly set.
func loadCapabilityEnvVars(cmd *cobra.Command, config *CapabilityConfig) {
	if !cmd.Flags().Changed("gemini-api-key") {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			config.GeminiAPIKey = key
		}
	}

	if !cmd.Flags().Changed("google-access-token") {
		if token := os.Getenv("GOOGLE_ACCESS_TOKEN"); token != "" {
			config.GoogleAccessToken = token
		}
	}

	if !cmd.Flags().Changed("metadata-store") {
		if storeType := os.Getenv("METADATA_STORE"); storeType != "" {
			config.MetadataStore = storeType
		}
	}

	if !cmd.Flags().Changed("valkey-url") {
		if url := os.Getenv("VALKEY_URL"); url != "" {
			config.Valkey.URL = url
		}
	}

	if !cmd.Flags().Changed("valkey-password") {
		if password := os.Getenv("VALKEY_PASSWORD"); password != "" {
			config.Valkey.Password = password
		}
	}

	if !cmd.Flags().Changed("valkey-tls") {
		if os.Getenv("VALKEY_TLS_ENABLED") == "true" {
			config.Valkey.TLSEnabled = true
		}
	}

	if !cmd.Flags().Changed("valkey-key-prefix") {
		if keyPrefix := os.Getenv("VALKEY_KEY_PREFIX"); keyPrefix != "" {
			config.Valkey.KeyPrefix = keyPrefix
		}
	}

	if !cmd.Flags().Changed("valkey-db") {
		if dbStr := os.Getenv("VALKEY_DB"); dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				config.Valkey.DB = db
			}
		}
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr string, disableStreaming bool, metricsConfig MetricsConfig) error {
	mux := http.NewServeMux()

	var httpHandler http.Handler
	if disableStreaming {
		httpHandler = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithDisableStreaming(true),
		)
	} else {
		httpHandler = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
		)
	}

	// Each bearer token gets its own session and owner id, so multiple
	// users can share one server instance with isolated metadata.
	sessionManager := server.NewSessionIDManagerWithLogger(24*time.Hour, slog.Default())
	sessionManager.SetMetrics(serverContext.Metrics())
	defer sessionManager.Stop()
	mux.Handle("/mcp", sessionOwnerMiddleware(httpHandler, sessionManager, serverContext))

	// Health check endpoints for Kubernetes probes
	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.InstrumentHTTPHandler(mux, serverContext.Metrics()),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// sessionOwnerMiddleware resolves the session owner from the Authorization
// header and attaches it to the request context. First sight of a
// credential registers it as that owner's calendar credential. Requests
// without an Authorization header fall through to the default owner.
func sessionOwnerMiddleware(next http.Handler, sessionManager *server.SessionIDManager, serverContext *server.ServerContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionManager.ResolveSessionID(r)
		if err == nil {
			owner := sessionManager.GetOwnerForSession(sessionID)
			if owner == "default" {
				owner = "owner-" + sessionID[:12]
				sessionManager.SetOwnerForSession(sessionID, owner)
				if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
					serverContext.SetCredentialForOwner(owner, token)
				}
			}
			r = r.WithContext(server.WithOwner(r.Context(), owner))
		}
		next.ServeHTTP(w, r)
	})
}
