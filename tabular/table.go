// CLAUDE:SUMMARY Table model for extracted tabular data — strategy tags, ordering, table IDs.
// Package tabular holds the normalized table representation shared by every
// extraction strategy, plus the cleanup, header reconstruction and hashing
// that turn raw detector output into stable, deduplicatable tables.
package tabular

import "fmt"

// Strategy identifies the extractor that produced a table.
type Strategy string

const (
	StrategyLattice Strategy = "lattice" // ruled-line detection
	StrategyStream  Strategy = "stream"  // whitespace-alignment detection
	StrategyPlumber Strategy = "plumber" // text-box grouping fallback
)

// Rank returns the merge priority of the strategy. Lower ranks win dedupe
// ties: lattice output carries the most structure, plumber the least.
func (s Strategy) Rank() int {
	switch s {
	case StrategyLattice:
		return 0
	case StrategyStream:
		return 1
	case StrategyPlumber:
		return 2
	}
	return 3
}

// Table is a rectangular grid of cleaned cells with a header row.
// Columns and every row share the same arity once normalized.
type Table struct {
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	Page        int        `json:"page"`     // 1-based
	Strategy    Strategy   `json:"strategy"`
	ContentHash string     `json:"content_hash,omitempty"`
}

// ID builds the stable table identifier from the table's page, its 1-based
// ordinal in the final merged order, and the content hash prefix.
func (t *Table) ID(ordinal int) string {
	h := t.ContentHash
	if len(h) > 8 {
		h = h[:8]
	}
	return fmt.Sprintf("p%03d_t%03d_%s", t.Page, ordinal, h)
}

// NumRows returns the data row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }
