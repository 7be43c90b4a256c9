// CLAUDE:SUMMARY Entry point for the docgrid ingestion engine — env config, slog, chi server, optional MCP stdio.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/docgrid/engine"
	"github.com/hazyhaar/docgrid/observability"
)

const version = "1.0.0"

func main() {
	// Logging.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Config: optional YAML base, env overlay, validation.
	cfg := engine.DefaultConfig()
	if path := os.Getenv("DOCGRID_CONFIG"); path != "" {
		loaded, err := engine.LoadConfig(path)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.FromEnv(); err != nil {
		slog.Error("config env", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := []engine.Option{engine.WithLogger(logger)}

	// Optional request audit log (separate DB to keep the request path lean).
	if cfg.AuditDB != "" {
		obsDB, err := sql.Open("sqlite", cfg.AuditDB+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			slog.Error("audit db", "error", err)
			os.Exit(1)
		}
		defer obsDB.Close()
		if err := observability.Init(obsDB); err != nil {
			slog.Error("audit schema", "error", err)
			os.Exit(1)
		}
		opts = append(opts, engine.WithEvents(observability.NewEventLogger(obsDB)))
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		slog.Error("init engine", "error", err)
		os.Exit(1)
	}

	// MCP stdio mode: expose the pipeline as tools instead of serving HTTP.
	if os.Getenv("MCP_TRANSPORT") == "stdio" {
		srv := eng.NewMCPServer(version)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("mcp serve", "error", err)
			os.Exit(1)
		}
		return
	}

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      eng.Routes(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("docgrid listening", "addr", cfg.Listen, "version", version)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
