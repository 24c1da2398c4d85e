// Package extract turns raw HTML into readable article text using an ordered
// chain of strategies. Extraction is best-effort: a URL that defeats every
// strategy is a normal outcome, not an error.
package extract

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/html"
)

// SourceDocument is one successfully extracted article. Immutable once
// created; it lives only until the topic's summarization consumes it.
type SourceDocument struct {
	URL         string
	Title       string
	Text        string
	Method      string
	Fingerprint string
	FetchedAt   time.Time
}

// Candidate is a single strategy's proposed extraction.
type Candidate struct {
	Title string
	Text  string
}

// Strategy is one extraction tactic. Implementations are deterministic and
// side-effect free.
type Strategy interface {
	Name() string
	Extract(rawHTML []byte) (Candidate, bool)
}

// DefaultMinTextLen is the acceptance threshold: a candidate whose text is
// shorter is rejected and the next strategy gets its turn.
const DefaultMinTextLen = 300

// Chain runs strategies in a fixed order and accepts the first candidate
// whose text reaches the minimum length.
type Chain struct {
	Strategies []Strategy
	// MinTextLen overrides DefaultMinTextLen when positive.
	MinTextLen int

	now func() time.Time
}

// NewChain builds the standard chain: readability article parsing, then the
// main-content DOM heuristic, then the CSS-selector scan with body fallback.
func NewChain() *Chain {
	return &Chain{
		Strategies: []Strategy{
			ReadabilityStrategy{},
			DOMStrategy{},
			SelectorStrategy{},
		},
	}
}

// Extract runs the chain over the fetched HTML. The boolean is false when no
// strategy produced enough text.
func (c *Chain) Extract(url string, rawHTML []byte) (SourceDocument, bool) {
	if len(rawHTML) == 0 {
		return SourceDocument{}, false
	}
	min := c.MinTextLen
	if min <= 0 {
		min = DefaultMinTextLen
	}
	now := c.now
	if now == nil {
		now = time.Now
	}
	for _, s := range c.Strategies {
		cand, ok := s.Extract(rawHTML)
		if !ok {
			continue
		}
		text := strings.TrimSpace(cand.Text)
		if len(text) < min {
			continue
		}
		return SourceDocument{
			URL:         url,
			Title:       resolveTitle(cand.Title, rawHTML),
			Text:        text,
			Method:      s.Name(),
			Fingerprint: Fingerprint(text),
			FetchedAt:   now().UTC(),
		}, true
	}
	return SourceDocument{}, false
}

// Fingerprint hashes extracted text for cross-URL deduplication.
func Fingerprint(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// resolveTitle applies the title fallback order: strategy-provided title,
// first <h1>, the <title> tag, then "Untitled".
func resolveTitle(candidate string, rawHTML []byte) string {
	if t := strings.TrimSpace(candidate); t != "" {
		return t
	}
	root, err := html.Parse(bytes.NewReader(rawHTML))
	if err == nil && root != nil {
		if h1 := textOfFirst(root, "h1"); h1 != "" {
			return h1
		}
		if tt := textOfFirst(root, "title"); tt != "" {
			return tt
		}
	}
	return "Untitled"
}

func textOfFirst(root *html.Node, tag string) string {
	n := findFirst(root, tag)
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for ch := cur.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}
