// CLAUDE:SUMMARY Deterministic character chunking with overlap, applied after emission.
package docpipe

// chunkText splits text into windows of maxChars characters advancing by
// maxChars-overlap. Sub-budget text comes back as a single part. The split
// counts raw characters, never tokens: the downstream indexer owns
// tokenization and this layer must stay deterministic.
func chunkText(text string, maxChars, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return []string{text}
	}
	var parts []string
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end >= len(runes) {
			parts = append(parts, string(runes[start:]))
			break
		}
		parts = append(parts, string(runes[start:end]))
		start = end - overlap
	}
	return parts
}

// chunkDocuments applies the chunker to every document. Documents under the
// budget pass through untouched and receive no chunk metadata; oversized
// ones fan out into copies carrying 1-based chunk/chunks_total.
func chunkDocuments(docs []Document, maxChars, overlap int) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		parts := chunkText(d.PageContent, maxChars, overlap)
		if len(parts) == 1 {
			out = append(out, d)
			continue
		}
		for i, p := range parts {
			md := d.Metadata
			md.Chunk = i + 1
			md.ChunksTotal = len(parts)
			out = append(out, Document{PageContent: p, Metadata: md})
		}
	}
	return out
}
