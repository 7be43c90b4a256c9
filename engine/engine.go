// CLAUDE:SUMMARY HTTP ingestion service — chi routes, bearer auth, process handler.
// Package engine exposes the document pipeline over HTTP and MCP.
package engine

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/docgrid/docpipe"
	"github.com/hazyhaar/docgrid/observability"
)

// defaultSource names uploads that arrive without an X-Filename header.
const defaultSource = "uploaded"

// Engine is the ingestion service.
type Engine struct {
	cfg    *Config
	pipe   *docpipe.Pipeline
	logger *slog.Logger
	events *observability.EventLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEvents sets the request audit logger.
func WithEvents(ev *observability.EventLogger) Option {
	return func(e *Engine) { e.events = ev }
}

// New creates a fully wired engine.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	pcfg := cfg.PipelineConfig()
	pcfg.Logger = e.logger
	pipe, err := docpipe.New(pcfg)
	if err != nil {
		return nil, err
	}
	e.pipe = pipe
	return e, nil
}

// Routes builds the HTTP router.
func (e *Engine) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", e.handleHealth)
	r.With(e.requireBearer).Put("/process", e.handleProcess)
	return r
}

func (e *Engine) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireBearer rejects requests without a valid bearer token before any of
// the body is read: 401 for a missing or non-Bearer header, 403 for a token
// that does not match the configured key.
func (e *Engine) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(auth, " ")
		if auth == "" || !ok || !strings.EqualFold(scheme, "Bearer") {
			writeError(w, http.StatusUnauthorized, "Missing Bearer token")
			return
		}
		token = strings.TrimSpace(token)
		if subtle.ConstantTimeCompare([]byte(token), []byte(e.cfg.APIKey)) != 1 {
			writeError(w, http.StatusForbidden, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (e *Engine) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read body failed")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Empty body")
		return
	}

	source := strings.TrimSpace(r.Header.Get("X-Filename"))
	if source == "" {
		source = defaultSource
	}
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	pdfRoute := isPDF(source, contentType)

	var docs []docpipe.Document
	if pdfRoute {
		docs, err = e.pipe.ProcessPDF(r.Context(), data, source, contentType)
	} else {
		docs = e.pipe.ProcessText(data, source, contentType)
	}

	e.auditRequest(observability.RequestEvent{
		ServiceName:   "docgrid",
		Source:        source,
		ContentType:   contentType,
		InputBytes:    int64(len(data)),
		DocumentCount: len(docs),
		TableRoute:    pdfRoute,
		Duration:      time.Since(start),
		Err:           err,
	})

	if err != nil {
		if r.Context().Err() != nil {
			// Client went away: nothing to answer, nothing to index.
			return
		}
		e.logger.Error("process failed", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	e.logger.Info("processed upload",
		"source", source,
		"pdf", pdfRoute,
		"documents", len(docs),
		"duration", time.Since(start))
	writeJSON(w, http.StatusOK, docs)
}

func (e *Engine) auditRequest(ev observability.RequestEvent) {
	if e.events == nil {
		return
	}
	e.events.LogAsync(ev)
}

// isPDF routes by Content-Type or filename extension.
func isPDF(source, contentType string) bool {
	if strings.Contains(contentType, "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(source), ".pdf")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
