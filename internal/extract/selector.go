package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order; the first match becomes the content
// root. The list mirrors the class/id conventions of the parenting sites the
// pipeline is pointed at.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".content",
	".article-body",
	".post-content",
	"#content",
	".entry-content",
	".article-content",
}

// SelectorStrategy is the last-resort tactic: strip obvious chrome, pick a
// content root by CSS selector, and keep any paragraph-like text of
// meaningful length. Falls back to the whole body when nothing matches.
type SelectorStrategy struct{}

func (SelectorStrategy) Name() string { return "selector" }

// minLineLen drops nav crumbs and button labels.
const minLineLen = 30

func (SelectorStrategy) Extract(rawHTML []byte) (Candidate, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return Candidate{}, false
	}

	doc.Find("script, style, nav, header, footer, aside, form, iframe, noscript").Remove()

	var root *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			root = s
			break
		}
	}
	if root == nil {
		root = doc.Find("body").First()
	}
	if root == nil || root.Length() == 0 {
		return Candidate{}, false
	}

	var parts []string
	root.Find("p, li, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) >= minLineLen {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		// No paragraph structure at all; take the root's full text.
		if text := strings.Join(strings.Fields(root.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return Candidate{}, false
	}

	title := strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
	return Candidate{Title: title, Text: strings.Join(parts, "\n")}, true
}
