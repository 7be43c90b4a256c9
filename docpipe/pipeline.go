// CLAUDE:SUMMARY Core pipeline engine — extraction, emission, chunking, fallback routing.
// Package docpipe turns uploaded file bytes into retrieval-ready documents.
//
// PDF bytes run through the table extraction stage (pdftab) and the table
// emitter; when no table survives, per-page text becomes chunked fallback
// documents. Non-PDF bytes decode best-effort into basic_text documents.
// All state is request-scoped: the pipeline holds only configuration and
// may be shared across concurrent requests.
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/docgrid/pdftab"
)

// Pipeline is the document emission engine.
type Pipeline struct {
	cfg    Config
	orch   *pdftab.Orchestrator
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) (*Pipeline, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Extract.Logger = cfg.Logger
	orch, err := pdftab.New(cfg.Extract)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, orch: orch, logger: cfg.Logger}, nil
}

// ProcessPDF runs the full table pipeline on a PDF body. The bytes are
// staged in a temp file for the extractors and removed on every exit path.
// A PDF without usable tables falls through to the text fallback; the
// result is always at least one document. Errors come only from temp file
// handling or a cancelled context, never from extraction outcomes.
func (p *Pipeline) ProcessPDF(ctx context.Context, data []byte, source, contentType string) ([]Document, error) {
	tmp, err := os.CreateTemp("", "docgrid-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("stage pdf: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage pdf: %w", err)
	}

	tables := p.orch.Tables(ctx, path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(tables) == 0 {
		p.logger.Debug("no tables survived, falling back to text", "source", source)
		text := pdfPageText(path, p.cfg.MaxTextPages)
		return fallbackDocuments(text, source, contentType, p.cfg.MaxDocChars, p.cfg.OverlapChars), nil
	}

	p.logger.Debug("tables extracted", "source", source, "count", len(tables))
	docs := EmitTables(tables, source)
	return chunkDocuments(docs, p.cfg.MaxDocChars, p.cfg.OverlapChars), nil
}

// ProcessText handles non-PDF bodies. It never fails: undecodable or empty
// input becomes a single explanatory document.
func (p *Pipeline) ProcessText(data []byte, source, contentType string) []Document {
	return basicTextDocuments(data, source, contentType, p.cfg.MaxDocChars, p.cfg.OverlapChars)
}
