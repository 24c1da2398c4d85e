package budget

import (
	"strings"
	"testing"
)

func TestFit_PerDocTruncationFirst(t *testing.T) {
	docs := []Excerpt{
		{URL: "a", Text: strings.Repeat("alpha ", 100)}, // 600 chars
		{URL: "b", Text: strings.Repeat("beta ", 100)},  // 500 chars
	}
	got := Fit(docs, 200, 10_000)
	if len(got) != 2 {
		t.Fatalf("expected both docs kept, got %d", len(got))
	}
	for _, d := range got {
		if len(d.Text) > 200 {
			t.Fatalf("doc %s exceeds per-doc cap: %d", d.URL, len(d.Text))
		}
	}
}

func TestFit_DropsWholeTrailingDocs(t *testing.T) {
	docs := []Excerpt{
		{URL: "a", Text: strings.Repeat("x", 400)},
		{URL: "b", Text: strings.Repeat("y", 400)},
		{URL: "c", Text: strings.Repeat("z", 400)},
	}
	got := Fit(docs, 500, 900)
	if len(got) != 2 {
		t.Fatalf("expected trailing doc dropped, got %d docs", len(got))
	}
	// Earlier documents keep their full truncated text; they are never re-cut.
	if len(got[0].Text) != 400 || len(got[1].Text) != 400 {
		t.Fatalf("earlier docs were re-cut: %d, %d", len(got[0].Text), len(got[1].Text))
	}
	if got[0].URL != "a" || got[1].URL != "b" {
		t.Fatalf("order changed: %s, %s", got[0].URL, got[1].URL)
	}
}

func TestTruncate_WordBoundary(t *testing.T) {
	text := "keep whole words when cutting the excerpt short"
	got := Truncate(text, 20)
	if len(got) > 20 {
		t.Fatalf("too long: %q", got)
	}
	if strings.HasSuffix(got, " ") {
		t.Fatalf("trailing space: %q", got)
	}
	if got != "keep whole words" {
		t.Fatalf("unexpected cut: %q", got)
	}
}

func TestTruncate_NoOpWhenShort(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Fatal("empty string is zero tokens")
	}
	if got := EstimateTokens("abcd"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := EstimateTokens("abcde"); got != 2 {
		t.Fatalf("expected ceiling division, got %d", got)
	}
}
