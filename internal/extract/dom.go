package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// DOMStrategy walks the parsed tree, preferring <main> then <article> then
// <body>, collecting block-level text while skipping navigation, script, and
// consent-banner containers. It is the middle link of the chain: lighter than
// readability, smarter than raw selector scans.
type DOMStrategy struct{}

func (DOMStrategy) Name() string { return "dom" }

func (DOMStrategy) Extract(rawHTML []byte) (Candidate, bool) {
	root, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil || root == nil {
		return Candidate{}, false
	}

	content := findFirst(root, "main")
	if content == nil {
		content = findFirst(root, "article")
	}
	if content == nil {
		content = findFirst(root, "body")
	}
	if content == nil {
		return Candidate{}, false
	}

	var b strings.Builder
	collectBlocks(&b, content)
	text := tidyLines(b.String())
	if text == "" {
		return Candidate{}, false
	}
	return Candidate{Title: textOfFirst(root, "title"), Text: text}, true
}

// skippedContainers are never descended into.
var skippedContainers = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true,
	"header": true, "footer": true, "aside": true, "form": true,
	"iframe": true,
}

func collectBlocks(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skippedContainers[name] || looksLikeConsentBanner(n) {
			return
		}
		switch name {
		case "br", "hr", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		data := strings.ReplaceAll(n.Data, "\t", " ")
		b.WriteString(strings.ReplaceAll(data, "\r", " "))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		}
	}
}

// looksLikeConsentBanner flags cookie/GDPR overlays by id/class markers so
// their text never pollutes the extraction.
func looksLikeConsentBanner(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

// tidyLines trims each line, collapses internal space runs, and keeps at most
// one blank line between blocks.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			if len(out) == 0 {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
