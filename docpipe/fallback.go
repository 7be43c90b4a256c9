// CLAUDE:SUMMARY Text fallback paths — per-page PDF text and best-effort non-PDF decoding.
package docpipe

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfPageText extracts plain text page by page, formatting each non-empty
// page as a "## page N" section and joining sections with a rule. Pages
// beyond maxPages are ignored. Pages that fail to extract are skipped.
func pdfPageText(path string, maxPages int) (text string) {
	// The reader can panic on malformed cross-reference tables; a broken
	// file must degrade to the OCR notice, not kill the request.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	total := r.NumPage()
	if total > maxPages {
		total = maxPages
	}

	var sections []string
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("## page %d\n\n%s\n", i, text))
	}
	return strings.TrimSpace(strings.Join(sections, "\n\n---\n\n"))
}

// fallbackDocuments wraps the extracted PDF text, or the OCR-needed notice
// when there is none, into chunked fallback_text documents. The result is
// never empty: clients always see at least one document.
func fallbackDocuments(text, source, contentType string, maxChars, overlap int) []Document {
	if contentType == "" {
		contentType = "application/pdf"
	}
	if text == "" {
		text = fmt.Sprintf("%s\n\n(No tables detected and text extraction is empty. This PDF may be scanned; OCR may be required.)", source)
	}
	doc := Document{
		PageContent: text,
		Metadata: Metadata{
			Source:      source,
			Extractor:   string(FormatFallbackText),
			Format:      FormatFallbackText,
			ContentType: contentType,
		},
	}
	return chunkDocuments([]Document{doc}, maxChars, overlap)
}

// basicTextDocuments handles non-PDF bodies: best-effort UTF-8 decode, with
// HTML converted to markdown first. Empty or undecodable input yields a
// single explanatory document.
func basicTextDocuments(data []byte, source, contentType string, maxChars, overlap int) []Document {
	text := strings.TrimSpace(strings.ToValidUTF8(string(data), ""))

	if text != "" && isHTML(source, contentType) {
		if md, err := htmlToMarkdown(text); err == nil && md != "" {
			text = md
		}
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if text == "" {
		text = fmt.Sprintf("%s\n\n(Non-PDF format not handled; empty text.)", source)
	}
	doc := Document{
		PageContent: text,
		Metadata: Metadata{
			Source:      source,
			Extractor:   string(FormatBasicText),
			Format:      FormatBasicText,
			ContentType: contentType,
		},
	}
	return chunkDocuments([]Document{doc}, maxChars, overlap)
}

func isHTML(source, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	lower := strings.ToLower(source)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
