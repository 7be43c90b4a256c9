// CLAUDE:SUMMARY Plumber strategy — text-box row grouping fallback, no lines or alignment needed.
package pdftab

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hazyhaar/docgrid/tabular"
)

// plumberExtractor groups the reader's row-ordered text boxes into cells by
// horizontal gap alone. It needs neither ruled lines nor column alignment,
// which makes it the fallback for loosely typeset grids, and the noisiest
// of the three strategies.
type plumberExtractor struct{}

func (plumberExtractor) Name() tabular.Strategy { return tabular.StrategyPlumber }

func (plumberExtractor) Extract(ctx context.Context, path string, pages PageSelector) ([]*tabular.Table, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tables []*tabular.Table
	for pageNr := 1; pageNr <= r.NumPage(); pageNr++ {
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		if !pages.Contains(pageNr) {
			continue
		}
		page := r.Page(pageNr)
		if page.V.IsNull() {
			continue
		}
		textRows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var block [][]string
		flush := func() {
			if len(block) >= 2 {
				width := 0
				for _, cells := range block {
					if len(cells) > width {
						width = len(cells)
					}
				}
				rows := make([][]string, len(block))
				for i, cells := range block {
					rows[i] = make([]string, width)
					copy(rows[i], cells)
				}
				tables = append(tables, &tabular.Table{
					Rows:     rows,
					Page:     pageNr,
					Strategy: tabular.StrategyPlumber,
				})
			}
			block = nil
		}

		for _, tr := range textRows {
			cells := splitRowCells(tr.Content)
			if len(cells) < 2 {
				flush()
				continue
			}
			block = append(block, cells)
		}
		flush()
	}
	return tables, nil
}

// splitRowCells cuts a visual row into cells wherever the horizontal gap
// between neighboring text boxes exceeds the font size (or 6 points, when
// the font is smaller than that).
func splitRowCells(texts []pdf.Text) []string {
	var cells []string
	var sb strings.Builder
	var right float64

	for i, t := range texts {
		if i > 0 {
			gap := t.FontSize
			if gap < 6 {
				gap = 6
			}
			if t.X-right > gap {
				cells = append(cells, strings.TrimSpace(sb.String()))
				sb.Reset()
			}
		}
		sb.WriteString(t.S)
		if t.X+t.W > right {
			right = t.X + t.W
		}
	}
	if sb.Len() > 0 {
		cells = append(cells, strings.TrimSpace(sb.String()))
	}

	out := cells[:0]
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
