package docpipe

import (
	"context"
	"strings"
	"testing"

	"github.com/hazyhaar/docgrid/tabular"
)

func normTable(t *testing.T, rows [][]string) *tabular.Table {
	t.Helper()
	n := tabular.Normalize(&tabular.Table{
		Rows:     rows,
		Page:     1,
		Strategy: tabular.StrategyLattice,
	}, tabular.Options{MinRows: 1, MinCols: 1})
	if n == nil {
		t.Fatal("fixture table rejected by normalizer")
	}
	return n
}

func TestEmitRowKVRoundTrip(t *testing.T) {
	tb := normTable(t, [][]string{
		{"A", "B"},
		{"x", "1"},
	})
	docs := EmitTables([]*tabular.Table{tb}, "t.pdf")
	if len(docs) != 2 {
		t.Fatalf("expected snapshot + 1 row doc, got %d", len(docs))
	}
	if docs[0].Metadata.Format != FormatTableMD {
		t.Fatalf("first doc format = %s, want table_md", docs[0].Metadata.Format)
	}
	row := docs[1]
	if row.Metadata.Format != FormatRowKV {
		t.Fatalf("row doc format = %s", row.Metadata.Format)
	}
	if row.PageContent != "A: x\nB: 1" {
		t.Fatalf("row_kv text = %q, want %q", row.PageContent, "A: x\nB: 1")
	}
}

func TestEmitStructuredTable(t *testing.T) {
	tb := normTable(t, [][]string{
		{"Country", "Price"},
		{"Argentine", "0,27 €"},
		{"Brazil", "0,19 €"},
	})
	docs := EmitTables([]*tabular.Table{tb}, "tarifs.pdf")
	if len(docs) != 3 {
		t.Fatalf("expected snapshot + 2 row docs, got %d", len(docs))
	}

	// Snapshot precedes its row documents.
	if docs[0].Metadata.Format != FormatTableMD {
		t.Fatal("snapshot must come first")
	}
	if !strings.HasPrefix(docs[1].PageContent, "Country: Argentine") {
		t.Fatalf("row 1 = %q", docs[1].PageContent)
	}
	if !strings.HasPrefix(docs[2].PageContent, "Country: Brazil") {
		t.Fatalf("row 2 = %q", docs[2].PageContent)
	}

	// Shared, stable table ID.
	id := docs[0].Metadata.TableID
	if !strings.HasPrefix(id, "p001_t001_") {
		t.Fatalf("table_id = %q", id)
	}
	for _, d := range docs {
		if d.Metadata.TableID != id {
			t.Fatal("table_id differs across documents of the same table")
		}
		if d.Metadata.Source != "tarifs.pdf" || d.Metadata.Page != 1 {
			t.Fatalf("metadata = %+v", d.Metadata)
		}
		if d.Metadata.Extractor != "lattice" {
			t.Fatalf("extractor = %q", d.Metadata.Extractor)
		}
	}

	// Reproducible across runs for identical content.
	again := EmitTables([]*tabular.Table{normTable(t, [][]string{
		{"Country", "Price"},
		{"Argentine", "0,27 €"},
		{"Brazil", "0,19 €"},
	})}, "tarifs.pdf")
	if again[0].Metadata.TableID != id {
		t.Fatal("table_id not reproducible")
	}
}

func TestEmitEntityGate(t *testing.T) {
	// Numeric first column: snapshot only.
	numeric := normTable(t, [][]string{
		{"Code", "Label"},
		{"12", "alpha"},
		{"34", "beta"},
		{"56", "gamma"},
	})
	docs := EmitTables([]*tabular.Table{numeric}, "codes.pdf")
	if len(docs) != 1 {
		t.Fatalf("numeric entity column must emit snapshot only, got %d docs", len(docs))
	}
	if docs[0].Metadata.Format != FormatTableMD {
		t.Fatal("surviving doc must be the snapshot")
	}

	// Mostly textual first column passes at the 70% threshold.
	mixed := normTable(t, [][]string{
		{"Dest", "Price"},
		{"Argentine", "1"},
		{"Brazil", "2"},
		{"Chile", "3"},
		{"12", "4"},
	})
	docs = EmitTables([]*tabular.Table{mixed}, "mixed.pdf")
	if len(docs) != 1+4 {
		t.Fatalf("expected snapshot + 4 rows at 75%% textual, got %d", len(docs))
	}
}

func TestEmitSkipsEmptyPairs(t *testing.T) {
	tb := &tabular.Table{
		Columns: []string{"Dest", "Price", "Note"},
		Rows: [][]string{
			{"Argentine", "0,27 €", ""},
			{"", "0,19 €", "promo"},
			{"Brazil", "0,19 €", ""},
			{"Chile", "0,22 €", ""},
		},
		Page:     1,
		Strategy: tabular.StrategyStream,
	}
	tb.ContentHash = tabular.ContentHash(tb)
	docs := EmitTables([]*tabular.Table{tb}, "t.pdf")
	// 3 of 4 entity cells are textual (75%), so the gate passes.
	// Snapshot + three rows: the empty-entity row is skipped entirely.
	if len(docs) != 4 {
		t.Fatalf("got %d docs", len(docs))
	}
	if strings.Contains(docs[1].PageContent, "Note:") {
		t.Fatalf("empty value pair not skipped: %q", docs[1].PageContent)
	}
	if docs[1].Metadata.RowIndex != 1 || docs[1].Metadata.Entity != "Argentine" {
		t.Fatalf("row metadata = %+v", docs[1].Metadata)
	}
}

func TestChunkText(t *testing.T) {
	if parts := chunkText("short", 100, 10); len(parts) != 1 || parts[0] != "short" {
		t.Fatalf("sub-budget text must pass through, got %v", parts)
	}

	text := strings.Repeat("abcdefghij", 30) // 300 chars
	parts := chunkText(text, 100, 20)
	if len(parts) < 3 {
		t.Fatalf("expected several chunks, got %d", len(parts))
	}
	for i, p := range parts[:len(parts)-1] {
		if len(p) != 100 {
			t.Fatalf("chunk %d length %d", i, len(p))
		}
	}

	// Concatenating with the overlap removed reproduces the original.
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		sb.WriteString(p[20:])
	}
	if sb.String() != text {
		t.Fatal("overlap reassembly does not reproduce the text")
	}
}

func TestChunkDocumentsMetadata(t *testing.T) {
	doc := Document{
		PageContent: strings.Repeat("x", 250),
		Metadata:    Metadata{Source: "a.pdf", Format: FormatTableMD, TableID: "p001_t001_deadbeef"},
	}
	out := chunkDocuments([]Document{doc}, 100, 10)
	if len(out) < 2 {
		t.Fatalf("expected chunked output, got %d", len(out))
	}
	for i, d := range out {
		if d.Metadata.Chunk != i+1 {
			t.Fatalf("chunk %d has Chunk=%d", i, d.Metadata.Chunk)
		}
		if d.Metadata.ChunksTotal != len(out) {
			t.Fatalf("chunks_total = %d, want %d", d.Metadata.ChunksTotal, len(out))
		}
		if d.Metadata.TableID != doc.Metadata.TableID {
			t.Fatal("chunk lost parent metadata")
		}
	}

	// Sub-budget documents receive no chunk metadata; re-chunking is a no-op.
	small := chunkDocuments([]Document{{PageContent: "tiny", Metadata: Metadata{Source: "a"}}}, 100, 10)
	if len(small) != 1 || small[0].Metadata.Chunk != 0 || small[0].Metadata.ChunksTotal != 0 {
		t.Fatalf("sub-budget doc mutated: %+v", small[0].Metadata)
	}
	if again := chunkDocuments(small, 100, 10); len(again) != 1 || again[0] != small[0] {
		t.Fatal("chunking not idempotent for sub-budget docs")
	}
}

func TestFallbackDocuments(t *testing.T) {
	docs := fallbackDocuments("## page 1\n\nsome text", "doc.pdf", "", 6000, 800)
	if len(docs) != 1 {
		t.Fatalf("got %d docs", len(docs))
	}
	d := docs[0]
	if d.Metadata.Format != FormatFallbackText || d.Metadata.Extractor != "fallback_text" {
		t.Fatalf("metadata = %+v", d.Metadata)
	}
	if d.Metadata.ContentType != "application/pdf" {
		t.Fatalf("content type = %q", d.Metadata.ContentType)
	}

	// Empty text: explanatory OCR document, never an empty list.
	docs = fallbackDocuments("", "scan.pdf", "application/pdf", 6000, 800)
	if len(docs) != 1 || !strings.Contains(docs[0].PageContent, "OCR") {
		t.Fatalf("expected OCR notice, got %+v", docs)
	}
	if !strings.Contains(docs[0].PageContent, "scan.pdf") {
		t.Fatal("notice must name the source")
	}
}

func TestBasicTextDocuments(t *testing.T) {
	docs := basicTextDocuments([]byte("hello world"), "note.txt", "text/plain", 6000, 800)
	if len(docs) != 1 {
		t.Fatalf("got %d docs", len(docs))
	}
	if docs[0].PageContent != "hello world" {
		t.Fatalf("content = %q", docs[0].PageContent)
	}
	if docs[0].Metadata.Format != FormatBasicText || docs[0].Metadata.Source != "note.txt" {
		t.Fatalf("metadata = %+v", docs[0].Metadata)
	}

	// Empty body → explanatory document.
	docs = basicTextDocuments(nil, "blob.bin", "", 6000, 800)
	if len(docs) != 1 || !strings.Contains(docs[0].PageContent, "blob.bin") {
		t.Fatalf("expected explanatory doc, got %+v", docs)
	}
}

func TestBasicTextHTML(t *testing.T) {
	body := `<html><head><title>Tarifs</title></head><body><h2>Zone 1</h2><p>Appels vers <b>Argentine</b></p><script>evil()</script></body></html>`
	docs := basicTextDocuments([]byte(body), "page.html", "text/html", 6000, 800)
	if len(docs) != 1 {
		t.Fatalf("got %d docs", len(docs))
	}
	text := docs[0].PageContent
	if strings.Contains(text, "<p>") || strings.Contains(text, "evil()") {
		t.Fatalf("markup or script survived: %q", text)
	}
	if !strings.Contains(text, "Argentine") {
		t.Fatalf("content lost: %q", text)
	}
	if !strings.Contains(text, "Tarifs") {
		t.Fatalf("title lost: %q", text)
	}
}

func TestPipelineProcessText(t *testing.T) {
	p, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	docs := p.ProcessText([]byte("hello world"), "note.txt", "text/plain")
	if len(docs) != 1 || docs[0].PageContent != "hello world" {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestPipelineProcessPDFNeverEmpty(t *testing.T) {
	p, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	// Garbage bytes: every strategy fails, text extraction yields nothing,
	// and the client still receives an explanatory document.
	docs, err := p.ProcessPDF(context.Background(), []byte("not a pdf at all"), "broken.pdf", "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) == 0 {
		t.Fatal("response must never be an empty array")
	}
	if docs[0].Metadata.Format != FormatFallbackText {
		t.Fatalf("format = %s", docs[0].Metadata.Format)
	}
	if docs[0].Metadata.Source != "broken.pdf" {
		t.Fatalf("source = %q", docs[0].Metadata.Source)
	}
}

func TestPipelineRejectsBadOverlap(t *testing.T) {
	if _, err := New(Config{MaxDocChars: 100, OverlapChars: 100}); err == nil {
		t.Fatal("expected overlap validation error")
	}
}
