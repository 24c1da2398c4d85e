// Package budget sizes prompt material so a topic's combined excerpts stay
// inside the model's comfortable input range.
package budget

import (
	"math"
	"strings"
)

// DefaultTotalChars caps the combined excerpt text embedded in one prompt.
const DefaultTotalChars = 7000

// DefaultPerDocChars caps any single document's contribution before whole
// documents start being dropped.
const DefaultPerDocChars = 1500

// Excerpt is one document's contribution to a prompt.
type Excerpt struct {
	Title string
	URL   string
	Text  string
}

// Fit enforces the budget in two phases: first every document is truncated
// to perDocChars, then trailing documents are dropped while the combined
// length still exceeds totalChars. Earlier documents are never re-cut to make
// room for later ones, so the included prefix is stable.
func Fit(docs []Excerpt, perDocChars, totalChars int) []Excerpt {
	if perDocChars <= 0 {
		perDocChars = DefaultPerDocChars
	}
	if totalChars <= 0 {
		totalChars = DefaultTotalChars
	}
	out := make([]Excerpt, 0, len(docs))
	for _, d := range docs {
		d.Text = Truncate(d.Text, perDocChars)
		out = append(out, d)
	}
	total := 0
	for _, d := range out {
		total += len(d.Text)
	}
	for len(out) > 0 && total > totalChars {
		total -= len(out[len(out)-1].Text)
		out = out[:len(out)-1]
	}
	return out
}

// Truncate cuts text to at most max characters, stepping back to the last
// word boundary so excerpts never end mid-word.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := text[:max]
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n")
}

// EstimateTokens converts a character count into a rough token count (~4
// chars per token for English prose), used only for log transparency.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / 4.0))
}
