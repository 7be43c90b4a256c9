// CLAUDE:SUMMARY Lattice strategy — ruled-line grid detection over pdfcpu content streams.
package pdftab

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/hazyhaar/docgrid/tabular"
)

// alignTol groups nearly-collinear ruled lines onto one grid axis.
const alignTol = 3.0

// latticeExtractor detects tables delimited by explicit ruled lines. The
// line-scale parameter sets the shortest rule worth keeping, as a fraction
// of the page's larger dimension: higher scale, smaller detectable lines.
type latticeExtractor struct {
	lineScale int
}

func (e *latticeExtractor) Name() tabular.Strategy { return tabular.StrategyLattice }

func (e *latticeExtractor) Extract(ctx context.Context, path string, pages PageSelector) ([]*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	dims, err := pdfCtx.PageDims()
	if err != nil {
		dims = nil
	}

	var tables []*tabular.Table
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		if !pages.Contains(pageNr) {
			continue
		}

		pageDim := 842.0
		if pageNr-1 < len(dims) {
			if d := dims[pageNr-1]; d.Width > 0 || d.Height > 0 {
				pageDim = d.Width
				if d.Height > pageDim {
					pageDim = d.Height
				}
			}
		}
		minLen := pageDim / float64(e.lineScale)

		segments, frags := pageGeometry(pdfCtx, pageNr)
		if len(segments) == 0 || len(frags) == 0 {
			continue
		}
		if t := gridToTable(segments, frags, minLen); t != nil {
			t.Page = pageNr
			t.Strategy = tabular.StrategyLattice
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func pageGeometry(pdfCtx *model.Context, pageNr int) ([]segment, []fragment) {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil, nil
	}
	return walkContent(data)
}

// gridToTable builds one table hypothesis per page from the ruled lines:
// long horizontal segments become row boundaries, long verticals become
// column boundaries, and every text fragment lands in the cell containing
// its anchor point.
func gridToTable(segments []segment, frags []fragment, minLen float64) *tabular.Table {
	var hPos, vPos []float64
	for _, s := range segments {
		if s.length() < minLen {
			continue
		}
		if s.horizontal(alignTol) {
			hPos = append(hPos, (s.y1+s.y2)/2)
		} else if s.vertical(alignTol) {
			vPos = append(vPos, (s.x1+s.x2)/2)
		}
	}

	rowBounds := clusterPositions(hPos, alignTol) // ascending y
	colBounds := clusterPositions(vPos, alignTol) // ascending x
	if len(rowBounds) < 2 || len(colBounds) < 2 {
		return nil
	}

	nRows := len(rowBounds) - 1
	nCols := len(colBounds) - 1
	cells := make([][][]fragment, nRows)
	for i := range cells {
		cells[i] = make([][]fragment, nCols)
	}

	placed := 0
	for _, fr := range frags {
		col := intervalIndex(colBounds, fr.x)
		// Rows read top-down while y grows bottom-up.
		bottomUp := intervalIndex(rowBounds, fr.y)
		if col < 0 || bottomUp < 0 {
			continue
		}
		row := nRows - 1 - bottomUp
		cells[row][col] = append(cells[row][col], fr)
		placed++
	}
	if placed == 0 {
		return nil
	}

	rows := make([][]string, nRows)
	for i := range cells {
		rows[i] = make([]string, nCols)
		for j, frs := range cells[i] {
			rows[i][j] = joinFragments(frs)
		}
	}
	return &tabular.Table{Rows: rows}
}

// clusterPositions groups axis positions lying within tol of a running
// cluster mean, returning one sorted representative per cluster.
func clusterPositions(vals []float64, tol float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)
	var out []float64
	sum, n := vals[0], 1.0
	for _, v := range vals[1:] {
		if v-sum/n <= tol {
			sum += v
			n++
			continue
		}
		out = append(out, sum/n)
		sum, n = v, 1
	}
	out = append(out, sum/n)
	return out
}

// intervalIndex returns i such that bounds[i] <= v < bounds[i+1], widened by
// the alignment tolerance at the outer edges; -1 when v is outside.
func intervalIndex(bounds []float64, v float64) int {
	if len(bounds) < 2 || v < bounds[0]-alignTol || v > bounds[len(bounds)-1]+alignTol {
		return -1
	}
	for i := 1; i < len(bounds); i++ {
		if v < bounds[i] {
			return i - 1
		}
	}
	return len(bounds) - 2
}

func joinFragments(frs []fragment) string {
	if len(frs) == 0 {
		return ""
	}
	sort.Slice(frs, func(i, j int) bool {
		if abs(frs[i].y-frs[j].y) > alignTol {
			return frs[i].y > frs[j].y // top first
		}
		return frs[i].x < frs[j].x
	})
	parts := make([]string, len(frs))
	for i, fr := range frs {
		parts[i] = fr.text
	}
	return strings.Join(parts, " ")
}
