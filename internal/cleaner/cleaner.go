// Package cleaner normalizes extracted article text before summarization.
package cleaner

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// boilerplate patterns mark trailing junk: the match and everything after it
// on the same line is removed. Case-insensitive, never spans lines.
var boilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Subscribe to our newsletter.*`),
	regexp.MustCompile(`(?i)Sign up for our newsletter.*`),
	regexp.MustCompile(`(?i)Share this article.*`),
	regexp.MustCompile(`(?i)Follow us on.*`),
	regexp.MustCompile(`(?i)Cookie policy.*`),
	regexp.MustCompile(`(?i)Privacy policy.*`),
	regexp.MustCompile(`(?i)Terms of use.*`),
	regexp.MustCompile(`(?i)All rights reserved.*`),
	regexp.MustCompile(`(?i)Copyright ©.*`),
	regexp.MustCompile(`(?i)Advertisement.*`),
	regexp.MustCompile(`(?i)Loading\.\.\..*`),
}

var (
	manyNewlines   = regexp.MustCompile(`\n{3,}`)
	manySpaces     = regexp.MustCompile(` {2,}`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
)

// Clean normalizes whitespace and strips known boilerplate fragments. It is a
// total, pure function and idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")

	// Collapse space runs before boilerplate matching so patterns see the
	// same text a second pass would.
	text = manySpaces.ReplaceAllString(text, " ")

	for _, re := range boilerplate {
		text = re.ReplaceAllString(text, "")
	}

	text = trailingSpaces.ReplaceAllString(text, "\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
