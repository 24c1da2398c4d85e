package cleaner

import (
	"strings"
	"testing"
)

func TestClean_CollapsesWhitespace(t *testing.T) {
	in := "First paragraph.\n\n\n\nSecond    paragraph with   spaces."
	out := Clean(in)
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("expected at most two consecutive newlines, got %q", out)
	}
	if strings.Contains(out, "  ") {
		t.Fatalf("expected space runs collapsed, got %q", out)
	}
	if !strings.Contains(out, "First paragraph.") || !strings.Contains(out, "Second paragraph with spaces.") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestClean_StripsTrailingBoilerplate(t *testing.T) {
	cases := []string{
		"Useful advice here. Subscribe to our newsletter for weekly tips!",
		"Useful advice here. Share this article with friends.",
		"Useful advice here. Follow us on Instagram and Twitter.",
		"Useful advice here. Copyright © 2024 Example Media.",
		"Useful advice here. All rights reserved.",
	}
	for _, in := range cases {
		out := Clean(in)
		if !strings.Contains(out, "Useful advice here.") {
			t.Fatalf("lost real content for %q: got %q", in, out)
		}
		if strings.Contains(strings.ToLower(out), "newsletter") ||
			strings.Contains(strings.ToLower(out), "share this") ||
			strings.Contains(strings.ToLower(out), "follow us") ||
			strings.Contains(strings.ToLower(out), "copyright") ||
			strings.Contains(strings.ToLower(out), "rights reserved") {
			t.Fatalf("boilerplate survived for %q: got %q", in, out)
		}
	}
}

func TestClean_BoilerplateDoesNotCrossLines(t *testing.T) {
	in := "Advertisement\nThe real article starts here and keeps going."
	out := Clean(in)
	if !strings.Contains(out, "The real article starts here") {
		t.Fatalf("removal crossed a line boundary: %q", out)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"a  b   c\n\n\n\nd",
		"Tips here.   Subscribe  to our newsletter now!",
		"line one \t \nline two\r\nline three\rline four",
		"caf\u0065\u0301 au lait", // decomposed é, NFC-normalized on first pass
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("not idempotent for %q:\n first: %q\nsecond: %q", in, once, twice)
		}
	}
}

func TestClean_TotalOnGarbage(t *testing.T) {
	// Never panics, never errors, always returns something sensible.
	_ = Clean(strings.Repeat("\n", 1000))
	_ = Clean(strings.Repeat(" ", 1000))
	if got := Clean("\n\n  \n\t\n"); got != "" {
		t.Fatalf("expected empty result for whitespace-only input, got %q", got)
	}
}
