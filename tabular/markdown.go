// CLAUDE:SUMMARY GitHub pipe-table rendering of a normalized table.
package tabular

import "strings"

// Markdown renders the table as a GitHub-style pipe table with the
// reconstructed headers. Pipes inside cells are escaped so the row
// structure survives.
func Markdown(t *Table) string {
	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(t.Columns)
	sb.WriteString("|")
	for range t.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(sb.String(), "\n")
}
