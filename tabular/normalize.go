// CLAUDE:SUMMARY Cell cleanup, multi-row header reconstruction and the table quality gate.
package tabular

import (
	"fmt"
	"strings"
)

// Options tunes normalization and the quality gate.
type Options struct {
	// MaxHeaderRows bounds the header band depth (default 4).
	MaxHeaderRows int
	// MinRows is the minimum data row count for a table to survive (default 2).
	MinRows int
	// MinCols is the minimum column count for a table to survive (default 2).
	MinCols int
}

func (o *Options) defaults() {
	if o.MaxHeaderRows <= 0 {
		o.MaxHeaderRows = 4
	}
	if o.MinRows <= 0 {
		o.MinRows = 2
	}
	if o.MinCols <= 0 {
		o.MinCols = 2
	}
}

// CleanCell normalizes a single cell: NBSP folded to space, tabs and
// newlines collapsed to single spaces, runs of whitespace squeezed, trimmed.
// Currency symbols, separators and decimal commas pass through untouched.
func CleanCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// IsNumericish reports whether a cell carries no entity-like semantic
// content. A numeric cell holds at least one digit and nothing but digits,
// spaces, decimal separators, currency signs, percent signs and plus/minus
// signs (accepted at any position); any other character makes the cell
// textual.
func IsNumericish(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == ' ' || r == '.' || r == ',' || r == '+' || r == '-':
		case r == '€' || r == '$' || r == '£' || r == '¥' || r == '%':
		default:
			return false
		}
	}
	return digits
}

// Normalize runs the full cleanup pipeline on a raw strategy table:
// cell cleanup, empty row/column removal, multi-row header reconstruction,
// quality gate, content hash. Returns nil when the table does not survive
// the gate. The input is not modified.
func Normalize(t *Table, opts Options) *Table {
	opts.defaults()
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	rows := cleanRows(t.Rows)
	rows = dropEmptyRows(rows)
	rows = dropEmptyColumns(rows)
	if len(rows) == 0 {
		return nil
	}

	columns, body := rebuildHeader(rows, opts.MaxHeaderRows)
	body = dropEmptyRows(cleanRows(body))

	if len(body) < opts.MinRows || len(columns) < opts.MinCols {
		return nil
	}
	if allNumeric(body) {
		return nil
	}

	out := &Table{
		Columns:  columns,
		Rows:     body,
		Page:     t.Page,
		Strategy: t.Strategy,
	}
	out.ContentHash = ContentHash(out)
	return out
}

func cleanRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cleaned := make([]string, len(row))
		for j, cell := range row {
			cleaned[j] = CleanCell(cell)
		}
		out[i] = cleaned
	}
	return out
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if cell != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

// dropEmptyColumns removes columns that are empty across every row. Rows are
// first padded to the widest arity so ragged detector output becomes
// rectangular before column occupancy is judged.
func dropEmptyColumns(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil
	}

	keep := make([]bool, width)
	for _, row := range rows {
		for j := 0; j < width; j++ {
			if j < len(row) && row[j] != "" {
				keep[j] = true
			}
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		var cells []string
		for j := 0; j < width; j++ {
			if !keep[j] {
				continue
			}
			if j < len(row) {
				cells = append(cells, row[j])
			} else {
				cells = append(cells, "")
			}
		}
		out[i] = cells
	}
	return out
}

// rebuildHeader reconstructs a flat header from up to maxHeaderRows leading
// rows. The first row is always consumed; further rows extend the header
// band only while they look like spanning headers: a blank cell somewhere,
// or fewer distinct non-empty labels than columns. Within each header row
// the last non-empty cell is carried rightward over blanks before the rows
// are joined vertically with " | ". Headers empty after joining become
// col_<i>; duplicates get a " (n)" suffix.
func rebuildHeader(rows [][]string, maxHeaderRows int) ([]string, [][]string) {
	width := len(rows[0])

	depth := 1
	for depth < maxHeaderRows && depth < len(rows)-1 {
		if !looksSpanning(rows[depth], width) {
			break
		}
		depth++
	}

	filled := make([][]string, depth)
	for i := 0; i < depth; i++ {
		filled[i] = forwardFill(rows[i])
	}

	columns := make([]string, width)
	for c := 0; c < width; c++ {
		var parts []string
		for i := 0; i < depth; i++ {
			if c < len(filled[i]) && filled[i][c] != "" {
				parts = append(parts, filled[i][c])
			}
		}
		name := CleanCell(strings.Join(parts, " | "))
		if name == "" {
			name = fmt.Sprintf("col_%d", c)
		}
		columns[c] = name
	}

	seen := make(map[string]int, width)
	for c, name := range columns {
		seen[name]++
		if n := seen[name]; n > 1 {
			columns[c] = fmt.Sprintf("%s (%d)", name, n)
		}
	}

	body := make([][]string, 0, len(rows)-depth)
	for _, row := range rows[depth:] {
		cells := make([]string, width)
		copy(cells, row)
		body = append(body, cells)
	}
	return columns, body
}

// looksSpanning reports whether a row reads as a continuation of a
// multi-row header: a blank somewhere (merged-cell artifact) or fewer
// distinct labels than columns.
func looksSpanning(row []string, width int) bool {
	distinct := make(map[string]bool, len(row))
	for j := 0; j < width; j++ {
		if j >= len(row) || row[j] == "" {
			return true
		}
		distinct[row[j]] = true
	}
	return len(distinct) < width
}

func forwardFill(row []string) []string {
	out := make([]string, len(row))
	last := ""
	for j, cell := range row {
		if cell != "" {
			last = cell
		}
		out[j] = last
	}
	return out
}

// allNumeric reports whether every non-empty data cell is numeric-only,
// leaving nothing for retrieval to anchor on.
func allNumeric(rows [][]string) bool {
	seen := false
	for _, row := range rows {
		for _, cell := range row {
			if cell == "" {
				continue
			}
			seen = true
			if !IsNumericish(cell) {
				return false
			}
		}
	}
	return seen
}
