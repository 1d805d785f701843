// Package server composes the HTTP API and MCP transports into one process
// handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/hylla/sikte/internal/adapters/server/httpapi"
	"github.com/hylla/sikte/internal/adapters/server/mcpapi"
	"github.com/hylla/sikte/internal/analytics"
)

// defaultBindAddress defines the localhost-first serve default.
const defaultBindAddress = "127.0.0.1:8080"

// defaultShutdownTimeout bounds graceful shutdown time once context
// cancellation starts.
const defaultShutdownTimeout = 5 * time.Second

// Config defines serve-mode endpoint configuration.
type Config struct {
	HTTPBind       string
	APIEndpoint    string
	MCPEndpoint    string
	ServerName     string
	ServerVersion  string
	AllowedOrigins []string
}

// NewHandler composes one root handler containing health, REST API, and MCP
// endpoints, wrapped in CORS for local web UIs.
func NewHandler(cfg Config, store *analytics.Store) (http.Handler, Config, error) {
	normalizedCfg := normalizeConfig(cfg)
	if store == nil {
		return nil, Config{}, fmt.Errorf("analytics store is required")
	}

	mcpHandler, err := mcpapi.NewHandler(
		mcpapi.Config{
			ServerName:    normalizedCfg.ServerName,
			ServerVersion: normalizedCfg.ServerVersion,
			EndpointPath:  normalizedCfg.MCPEndpoint,
		},
		store,
	)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/healthz", writeHealthStatus)
	r.Get("/readyz", writeHealthStatus)
	r.Mount(normalizedCfg.APIEndpoint, httpapi.NewRouter(store))
	r.Handle(normalizedCfg.MCPEndpoint, mcpHandler)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: normalizedCfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return corsMiddleware.Handler(r), normalizedCfg, nil
}

// Run starts the composed HTTP server and blocks until shutdown or startup
// failure.
func Run(ctx context.Context, cfg Config, store *analytics.Store) error {
	if ctx == nil {
		ctx = context.Background()
	}

	handler, normalizedCfg, err := NewHandler(cfg, store)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}

	srv := &http.Server{
		Addr:              normalizedCfg.HTTPBind,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	}
}

// normalizeConfig applies deterministic defaults to serve config.
func normalizeConfig(cfg Config) Config {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, "/api/v1")
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, "/mcp")
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "sikte"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}
	return cfg
}

// normalizeEndpoint trims and roots one endpoint path.
func normalizeEndpoint(endpoint, fallback string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = fallback
	}
	return "/" + strings.Trim(endpoint, "/")
}

// writeHealthStatus reports process liveness.
func writeHealthStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
