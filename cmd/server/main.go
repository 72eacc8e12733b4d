package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/geodash/internal/config"
	"github.com/rpggio/geodash/internal/mcp"
	"github.com/rpggio/geodash/internal/metrics"
	"github.com/rpggio/geodash/internal/source"
	"github.com/rpggio/geodash/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	loc, err := cfg.View.TimeLocation()
	if err != nil {
		return err
	}

	opts := sourceOptions(cfg)
	if opts.Kind == source.KindSQLite {
		if err := ensureDBDir(opts.Path); err != nil {
			return fmt.Errorf("prepare database path: %w", err)
		}
	}
	provider, closeSource, err := source.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open %s source: %w", opts.Kind, err)
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Warn("closing source", "error", err)
		}
	}()

	workspaces := mcp.NewWorkspaces(mcp.WorkspaceConfig{
		Source:   source.NewSnapshot(provider),
		PageSize: cfg.View.PageSize,
		Location: loc,
		Recorder: metrics.NewPrometheus(prometheus.DefaultRegisterer),
		Logger:   logger,
	})

	resolver := transport.NewTokenResolver(cfg.Auth.Tokens)
	mcpServer := mcp.NewServer(mcp.Config{
		Workspaces:    workspaces,
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	logger.Info("dataset source ready", "kind", opts.Kind, "latency", opts.Latency)

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(logger, mcpServer)
	}

	authMW := transport.StaticClientMiddleware(mcp.DefaultClient)
	if cfg.Auth.Enabled {
		authMW = transport.AuthMiddleware(resolver)
	}
	router := newRouter(mcpServer, mcp.NewHandler(workspaces), authMW, prometheus.DefaultGatherer)
	return runHTTPMode(logger, router, cfg.Server.Host, cfg.Server.Port)
}

func sourceOptions(cfg config.Config) source.Options {
	opts := source.Options{
		Kind:    cfg.Source.Kind,
		Path:    cfg.Source.Path,
		Count:   cfg.Source.Count,
		Seed:    cfg.Source.Seed,
		Latency: cfg.Source.Latency,
		S3: source.S3Config{
			Bucket:    cfg.Source.S3.Bucket,
			Key:       cfg.Source.S3.Key,
			Region:    cfg.Source.S3.Region,
			Endpoint:  cfg.Source.S3.Endpoint,
			PathStyle: cfg.Source.S3.PathStyle,
		},
		PostgresDSN: cfg.Source.Postgres.DSN,
	}
	if opts.Kind == source.KindSQLite && opts.Path == "" {
		opts.Path = cfg.DB.Path
	}
	return opts
}

// newRouter serves the MCP streamable transport at /mcp, JSON-RPC at /rpc,
// health at /health and Prometheus metrics at /metrics.
func newRouter(mcpServer *sdkmcp.Server, rpc transport.RPCHandler, authMW func(http.Handler) http.Handler, gatherer prometheus.Gatherer) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Handle("/mcp", mcpHandler)
	r.Handle("/mcp/*", mcpHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Mount("/", transport.NewServer(rpc, authMW))
	return r
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}
