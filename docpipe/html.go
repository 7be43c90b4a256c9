// CLAUDE:SUMMARY HTML body handling — sanitize, convert to markdown, recover the title.
package docpipe

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var htmlPolicy = bluemonday.UGCPolicy()

// htmlToMarkdown sanitizes an HTML body and converts it to markdown so the
// chunker works on readable text instead of markup. The document title, when
// present, becomes a leading heading since sanitization drops the head.
func htmlToMarkdown(src string) (string, error) {
	title := htmlTitle(src)

	sanitized := htmlPolicy.Sanitize(src)
	md, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		return "", err
	}
	md = strings.TrimSpace(md)
	if title != "" && !strings.HasPrefix(md, "# ") {
		md = "# " + title + "\n\n" + md
	}
	return md, nil
}

// htmlTitle pulls the <title> text out of the raw document.
func htmlTitle(src string) string {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return title
}
