// CLAUDE:SUMMARY Canonical serialization and SHA-256 content hashing for dedupe.
package tabular

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	cellSep = "\x1f" // unit separator between cells
	rowSep  = "\x1e" // record separator between rows
)

// ContentHash computes the stable identity of a normalized table: headers
// joined by the unit separator, each data row joined the same way, rows
// joined by the record separator, hashed with SHA-256 and hex-encoded.
// Two tables with identical normalized content collide by construction,
// regardless of page, strategy or cosmetic whitespace.
func ContentHash(t *Table) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Columns, cellSep))
	for _, row := range t.Rows {
		sb.WriteString(rowSep)
		sb.WriteString(strings.Join(row, cellSep))
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
