package extract

import (
	"bytes"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityStrategy runs the go-readability article parser, the strongest
// tactic for news and blog layouts. It goes first in the chain.
type ReadabilityStrategy struct{}

func (ReadabilityStrategy) Name() string { return "readability" }

func (ReadabilityStrategy) Extract(rawHTML []byte) (Candidate, bool) {
	article, err := readability.FromReader(bytes.NewReader(rawHTML), nil)
	if err != nil {
		return Candidate{}, false
	}
	if article.TextContent == "" {
		return Candidate{}, false
	}
	return Candidate{Title: article.Title, Text: article.TextContent}, true
}
