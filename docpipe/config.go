// CLAUDE:SUMMARY Configuration and defaults for the document pipeline.
package docpipe

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/docgrid/pdftab"
)

// Config configures the document pipeline.
type Config struct {
	// MaxDocChars is the chunker window in characters (default 6000).
	MaxDocChars int
	// OverlapChars is the chunker overlap (0 when unset, negative values become
	// 0; must stay below the window).
	OverlapChars int
	// MaxTextPages caps the PDF text fallback (default 200).
	MaxTextPages int
	// Extract tunes the table extraction stage.
	Extract pdftab.Config
	// Logger for debug/error messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxDocChars <= 0 {
		c.MaxDocChars = 6000
	}
	if c.OverlapChars < 0 {
		c.OverlapChars = 0
	}
	if c.MaxTextPages <= 0 {
		c.MaxTextPages = 200
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

func (c *Config) validate() error {
	if c.OverlapChars >= c.MaxDocChars {
		return fmt.Errorf("overlap %d must be smaller than the chunk window %d", c.OverlapChars, c.MaxDocChars)
	}
	return nil
}
