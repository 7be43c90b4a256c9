// CLAUDE:SUMMARY Engine configuration — yaml file base, env overlay, validation.
package engine

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/docgrid/docpipe"
	"github.com/hazyhaar/docgrid/pdftab"
	"github.com/hazyhaar/docgrid/tabular"
)

// Config holds the full docgrid configuration.
type Config struct {
	Listen           string  `yaml:"listen"`
	APIKey           string  `yaml:"api_key"`
	PDFPages         string  `yaml:"pdf_pages"`
	MaxDocChars      int     `yaml:"max_doc_chars"`
	OverlapChars     int     `yaml:"overlap_chars"`
	MaxTextPages     int     `yaml:"max_text_pages"`
	MaxHeaderRows    int     `yaml:"max_header_rows"`
	MinRowsForTable  int     `yaml:"min_rows_for_table"`
	MinColsForTable  int     `yaml:"min_cols_for_table"`
	ExtractorWorkers int     `yaml:"extractor_workers"`
	LatticeLineScale int     `yaml:"lattice_line_scale"`
	StreamEdgeTol    float64 `yaml:"stream_edge_tol"`
	StreamRowTol     float64 `yaml:"stream_row_tol"`
	AuditDB          string  `yaml:"audit_db"`
}

// DefaultConfig returns sane defaults. The API key has no default: startup
// fails when it is missing.
func DefaultConfig() *Config {
	return &Config{
		Listen:           ":8088",
		PDFPages:         "all",
		MaxDocChars:      6000,
		OverlapChars:     800,
		MaxTextPages:     200,
		MaxHeaderRows:    4,
		MinRowsForTable:  2,
		MinColsForTable:  2,
		ExtractorWorkers: 3,
		LatticeLineScale: 40,
		StreamEdgeTol:    200,
		StreamRowTol:     10,
	}
}

// LoadConfig reads and parses a YAML config file merged over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overlays environment variables onto the config. Unset variables
// leave the current values untouched.
func (c *Config) FromEnv() error {
	if v := os.Getenv("ENGINE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("PDF_PAGES"); v != "" {
		c.PDFPages = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Listen = ":" + v
	}
	if v := os.Getenv("AUDIT_DB"); v != "" {
		c.AuditDB = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MAX_DOC_CHARS", &c.MaxDocChars},
		{"OVERLAP_CHARS", &c.OverlapChars},
		{"MAX_TEXT_PAGES", &c.MaxTextPages},
		{"MAX_HEADER_ROWS", &c.MaxHeaderRows},
		{"MIN_ROWS_FOR_TABLE", &c.MinRowsForTable},
		{"MIN_COLS_FOR_TABLE", &c.MinColsForTable},
		{"EXTRACTOR_WORKERS", &c.ExtractorWorkers},
		{"LATTICE_LINE_SCALE", &c.LatticeLineScale},
		{"CAMELOT_LATTICE_LINE_SCALE", &c.LatticeLineScale}, // spec name wins over the alias
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"CAMELOT_STREAM_EDGE_TOL", &c.StreamEdgeTol},
		{"CAMELOT_STREAM_ROW_TOL", &c.StreamRowTol},
	}
	for _, e := range floats {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = f
	}
	return nil
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("ENGINE_API_KEY is required")
	}
	if c.MaxDocChars <= 0 {
		return fmt.Errorf("max_doc_chars must be > 0")
	}
	if c.OverlapChars < 0 || c.OverlapChars >= c.MaxDocChars {
		return fmt.Errorf("overlap_chars must be in [0, max_doc_chars)")
	}
	if c.ExtractorWorkers <= 0 {
		return fmt.Errorf("extractor_workers must be > 0")
	}
	if _, err := pdftab.ParsePages(c.PDFPages); err != nil {
		return fmt.Errorf("pdf_pages: %w", err)
	}
	return nil
}

// PipelineConfig maps the engine config onto the document pipeline.
func (c *Config) PipelineConfig() docpipe.Config {
	return docpipe.Config{
		MaxDocChars:  c.MaxDocChars,
		OverlapChars: c.OverlapChars,
		MaxTextPages: c.MaxTextPages,
		Extract: pdftab.Config{
			Pages:            c.PDFPages,
			Workers:          c.ExtractorWorkers,
			LatticeLineScale: c.LatticeLineScale,
			StreamEdgeTol:    c.StreamEdgeTol,
			StreamRowTol:     c.StreamRowTol,
			Norm: tabular.Options{
				MaxHeaderRows: c.MaxHeaderRows,
				MinRows:       c.MinRowsForTable,
				MinCols:       c.MinColsForTable,
			},
		},
	}
}
