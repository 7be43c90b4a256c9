// CLAUDE:SUMMARY Stream strategy — whitespace-alignment column inference over positioned text.
package pdftab

import (
	"context"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hazyhaar/docgrid/tabular"
)

// streamExtractor infers column boundaries from whitespace alignment of the
// positioned text runs, for tables that have no ruled lines. rowTol groups
// runs into visual rows; edgeTol bounds the vertical gap that still belongs
// to the same table block.
type streamExtractor struct {
	edgeTol float64
	rowTol  float64
}

func (e *streamExtractor) Name() tabular.Strategy { return tabular.StrategyStream }

func (e *streamExtractor) Extract(ctx context.Context, path string, pages PageSelector) ([]*tabular.Table, error) {
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

		words := mergeRuns(page.Content().Text, e.rowTol)
		lines := groupLines(words, e.rowTol)
		for _, block := range splitBlocks(lines, e.edgeTol) {
			if t := alignColumns(block); t != nil {
				t.Page = pageNr
				t.Strategy = tabular.StrategyStream
				tables = append(tables, t)
			}
		}
	}
	return tables, nil
}

// word is a merged text run with its horizontal extent.
type word struct {
	x, y, right float64
	text        string
}

type line struct {
	y     float64
	words []word
}

// mergeRuns glues adjacent character runs into words: same visual line,
// horizontal gap of at most 0.35 of the font size (never less than 1 point).
func mergeRuns(texts []pdf.Text, rowTol float64) []word {
	runs := make([]pdf.Text, len(texts))
	copy(runs, texts)
	sort.SliceStable(runs, func(i, j int) bool {
		if abs(runs[i].Y-runs[j].Y) > rowTol/2 {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var words []word
	for _, t := range runs {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		gap := t.FontSize * 0.35
		if gap < 1 {
			gap = 1
		}
		if n := len(words); n > 0 {
			prev := &words[n-1]
			if abs(prev.y-t.Y) <= rowTol/2 && t.X-prev.right <= gap && t.X >= prev.x {
				prev.text += t.S
				if t.X+t.W > prev.right {
					prev.right = t.X + t.W
				}
				continue
			}
		}
		words = append(words, word{x: t.X, y: t.Y, right: t.X + t.W, text: t.S})
	}

	out := words[:0]
	for _, w := range words {
		w.text = strings.TrimSpace(w.text)
		if w.text != "" {
			out = append(out, w)
		}
	}
	return out
}

// groupLines clusters words into visual rows within rowTol, top to bottom.
func groupLines(words []word, rowTol float64) []line {
	sort.SliceStable(words, func(i, j int) bool {
		if abs(words[i].y-words[j].y) > rowTol {
			return words[i].y > words[j].y
		}
		return words[i].x < words[j].x
	})

	var lines []line
	for _, w := range words {
		if n := len(lines); n > 0 && abs(lines[n-1].y-w.y) <= rowTol {
			lines[n-1].words = append(lines[n-1].words, w)
			continue
		}
		lines = append(lines, line{y: w.y, words: []word{w}})
	}
	return lines
}

// splitBlocks cuts the line sequence wherever the vertical gap exceeds
// edgeTol, so separate tables on one page stay separate.
func splitBlocks(lines []line, edgeTol float64) [][]line {
	var blocks [][]line
	var cur []line
	for _, ln := range lines {
		if len(cur) > 0 && cur[len(cur)-1].y-ln.y > edgeTol {
			blocks = append(blocks, cur)
			cur = nil
		}
		cur = append(cur, ln)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// alignColumns turns a block of lines into a raw table by clustering word
// left edges into column positions. Blocks whose lines never agree on at
// least two columns are not tables.
func alignColumns(block []line) *tabular.Table {
	var edges []float64
	multi := 0
	for _, ln := range block {
		if len(ln.words) >= 2 {
			multi++
		}
		for _, w := range ln.words {
			edges = append(edges, w.x)
		}
	}
	if multi < 2 {
		return nil
	}

	cols := clusterPositions(edges, 4.0)
	if len(cols) < 2 {
		return nil
	}

	rows := make([][]string, 0, len(block))
	for _, ln := range block {
		cells := make([]string, len(cols))
		for _, w := range ln.words {
			c := nearestColumn(cols, w.x)
			if cells[c] != "" {
				cells[c] += " "
			}
			cells[c] += w.text
		}
		rows = append(rows, cells)
	}
	return &tabular.Table{Rows: rows}
}

func nearestColumn(cols []float64, x float64) int {
	best, bestDist := 0, abs(cols[0]-x)
	for i := 1; i < len(cols); i++ {
		if d := abs(cols[i] - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
