// CLAUDE:SUMMARY Concurrent strategy orchestration — tolerant fan-out, deterministic merge, hash dedupe.
package pdftab

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/docgrid/tabular"
)

// Config tunes the orchestrator and its default strategies.
type Config struct {
	// Pages is the page selector ("all" or "1-5,8").
	Pages string
	// Workers bounds strategy concurrency (default 3).
	Workers int
	// LatticeLineScale tunes ruled-line sensitivity (default 40).
	LatticeLineScale int
	// StreamEdgeTol is the stream strategy's block gap in points (default 200).
	StreamEdgeTol float64
	// StreamRowTol is the stream strategy's row clustering tolerance (default 10).
	StreamRowTol float64
	// Norm configures normalization and the table quality gate.
	Norm tabular.Options
	// Logger for per-strategy failures.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Pages == "" {
		c.Pages = "all"
	}
	if c.Workers <= 0 {
		c.Workers = 3
	}
	if c.LatticeLineScale <= 0 {
		c.LatticeLineScale = 40
	}
	if c.StreamEdgeTol <= 0 {
		c.StreamEdgeTol = 200
	}
	if c.StreamRowTol <= 0 {
		c.StreamRowTol = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor is a single table detection strategy. Implementations return raw
// rectangular tables tagged with page and strategy; ContentHash stays unset.
// They must be independent of one another and safe for concurrent use.
type Extractor interface {
	Name() tabular.Strategy
	Extract(ctx context.Context, path string, pages PageSelector) ([]*tabular.Table, error)
}

// Orchestrator fans a PDF out to every strategy, normalizes the candidates
// and merges them into one deduplicated, deterministically ordered list.
type Orchestrator struct {
	cfg        Config
	pages      PageSelector
	strategies []Extractor
	logger     *slog.Logger
}

// New wires the three default strategies: lattice, stream, plumber.
func New(cfg Config) (*Orchestrator, error) {
	cfg.defaults()
	return newWith(cfg,
		&latticeExtractor{lineScale: cfg.LatticeLineScale},
		&streamExtractor{edgeTol: cfg.StreamEdgeTol, rowTol: cfg.StreamRowTol},
		plumberExtractor{},
	)
}

// NewWithStrategies builds an orchestrator over custom strategies.
func NewWithStrategies(cfg Config, strategies ...Extractor) (*Orchestrator, error) {
	cfg.defaults()
	return newWith(cfg, strategies...)
}

func newWith(cfg Config, strategies ...Extractor) (*Orchestrator, error) {
	pages, err := ParsePages(cfg.Pages)
	if err != nil {
		return nil, fmt.Errorf("page selector: %w", err)
	}
	return &Orchestrator{
		cfg:        cfg,
		pages:      pages,
		strategies: strategies,
		logger:     cfg.Logger,
	}, nil
}

// Tables runs every strategy against the PDF at path and returns the merged
// candidates. A strategy that errors or panics is logged and contributes
// nothing; when all of them come back empty the result is an empty list,
// never an error. The result order is (page, strategy rank, content hash),
// and the first occurrence of each content hash wins, so the
// higher-structure strategy takes dedupe ties.
func (o *Orchestrator) Tables(ctx context.Context, path string) []*tabular.Table {
	results := make([][]*tabular.Table, len(o.strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, strat := range o.strategies {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Warn("extractor panicked", "strategy", strat.Name(), "panic", r)
				}
			}()
			raw, err := strat.Extract(gctx, path, o.pages)
			if err != nil {
				o.logger.Warn("extractor failed", "strategy", strat.Name(), "error", err)
			}
			results[i] = raw
			return nil
		})
	}
	g.Wait()

	var candidates []*tabular.Table
	for _, raw := range results {
		for _, t := range raw {
			if n := tabular.Normalize(t, o.cfg.Norm); n != nil {
				candidates = append(candidates, n)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if ra, rb := a.Strategy.Rank(), b.Strategy.Rank(); ra != rb {
			return ra < rb
		}
		return a.ContentHash < b.ContentHash
	})

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, t := range candidates {
		if seen[t.ContentHash] {
			continue
		}
		seen[t.ContentHash] = true
		out = append(out, t)
	}
	return out
}
