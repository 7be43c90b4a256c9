// CLAUDE:SUMMARY Table emission — markdown snapshot plus row-level KV documents behind the entity gate.
package docpipe

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/docgrid/tabular"
)

// entityShare is the minimum share of first-column data cells that must be
// non-empty and non-numeric for row-level emission to fire.
const entityShare = 0.7

// EmitTables converts the surviving tables into documents. Each table gets
// its sequential ID, then a markdown snapshot, then, when the first column
// is entity-like, one KV document per data row, in row order.
func EmitTables(tables []*tabular.Table, source string) []Document {
	var docs []Document
	for i, t := range tables {
		id := t.ID(i + 1)
		docs = append(docs, snapshotDoc(t, source, id))
		if entityLike(t) {
			docs = append(docs, rowDocs(t, source, id)...)
		}
	}
	return docs
}

// entityLike applies the entity-column rule: at least 70% of the data cells
// in column 0 are non-empty and carry non-numeric content. Numeric first
// columns would make useless "key: key" pairs, so they only get a snapshot.
func entityLike(t *tabular.Table) bool {
	if t.NumCols() == 0 || t.NumRows() == 0 {
		return false
	}
	textlike := 0
	for _, row := range t.Rows {
		if v := row[0]; v != "" && !tabular.IsNumericish(v) {
			textlike++
		}
	}
	return float64(textlike) >= entityShare*float64(t.NumRows())
}

func snapshotDoc(t *tabular.Table, source, id string) Document {
	text := fmt.Sprintf("## %s — table\n- page: %d\n- extractor: %s\n- table_id: %s\n\n%s\n",
		source, t.Page, t.Strategy, id, tabular.Markdown(t))
	return Document{
		PageContent: text,
		Metadata: Metadata{
			Source:    source,
			Page:      t.Page,
			Extractor: string(t.Strategy),
			TableID:   id,
			Format:    FormatTableMD,
		},
	}
}

func rowDocs(t *tabular.Table, source, id string) []Document {
	docs := make([]Document, 0, t.NumRows())
	for i, row := range t.Rows {
		entity := row[0]
		if entity == "" {
			continue
		}
		var lines []string
		for j, header := range t.Columns {
			if header == "" || j >= len(row) || row[j] == "" {
				continue
			}
			lines = append(lines, header+": "+row[j])
		}
		if len(lines) == 0 {
			continue
		}
		docs = append(docs, Document{
			PageContent: strings.Join(lines, "\n"),
			Metadata: Metadata{
				Source:    source,
				Page:      t.Page,
				Extractor: string(t.Strategy),
				TableID:   id,
				RowIndex:  i + 1,
				Entity:    entity,
				EntityCol: t.Columns[0],
				Format:    FormatRowKV,
			},
		})
	}
	return docs
}
