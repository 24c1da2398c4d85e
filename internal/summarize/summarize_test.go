package summarize

import (
	"context"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parentbud/carecards/internal/cache"
	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/topics"
)

// fakeClient is a scripted model backend counting its invocations.
type fakeClient struct {
	calls int
	reply string
	err   error
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

func testTopic() topics.Topic {
	return topics.Topic{
		ID:        "tantrums",
		Title:     "Tantrums",
		Subtitle:  "Handling big feelings",
		AgeGroups: []string{"2-4", "4-6"},
	}
}

// adviceText yields three standalone advice sentences separated by junk, so
// the sentence extractor produces three distinct tips.
func adviceText() string {
	return "Praise your child when the bedtime routine goes smoothly each night. Nope. " +
		"Offer a calm choice so your toddler can practice self control today. Nope. " +
		"Try to keep a consistent routine and talk about feelings every day. Nope."
}

func testDocs(text string) []extract.SourceDocument {
	return []extract.SourceDocument{{URL: "https://example.com/a", Title: "A", Text: text}}
}

const goodReply = "```json\n" +
	`[{"title": "Calm First", "subtitle": "Steady wins", "tips": ["Tip one here.", "Tip two here.", "Tip three here.", "Tip four here.", "Tip five here."], "age_groups": ["2-4"]}]` +
	"\n```"

func TestSummarize_AIHappyPath(t *testing.T) {
	fc := &fakeClient{reply: goodReply}
	s := &Summarizer{Client: fc, Model: "test-model"}
	res := s.Summarize(context.Background(), testTopic(), testDocs(adviceText()))
	if res.Method != MethodAI {
		t.Fatalf("expected ai method, got %q", res.Method)
	}
	if len(res.Sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(res.Sets))
	}
	set := res.Sets[0]
	if set.Title != "Calm First" || len(set.Tips) != 5 {
		t.Fatalf("unexpected set: %+v", set)
	}
	if len(set.AgeGroups) != 1 || set.AgeGroups[0] != "2-4" {
		t.Fatalf("unexpected age groups: %v", set.AgeGroups)
	}
	if fc.calls != 1 {
		t.Fatalf("expected exactly 1 model call, got %d", fc.calls)
	}
}

func TestSummarize_MalformedReplyDegradesAndNeverClaimsAI(t *testing.T) {
	fc := &fakeClient{reply: "I'm sorry, here are some thoughts instead of JSON."}
	s := &Summarizer{Client: fc, Model: "test-model"}
	res := s.Summarize(context.Background(), testTopic(), testDocs(adviceText()))
	if res.Method == MethodAI {
		t.Fatal("malformed reply must not be stamped as ai")
	}
	if res.Method != MethodExtracted {
		t.Fatalf("expected extraction fallback, got %q", res.Method)
	}
	if len(res.Sets) == 0 || len(res.Sets[0].Tips) < MinTips {
		t.Fatalf("fallback produced too few tips: %+v", res.Sets)
	}
}

func TestSummarize_RateLimitRetriesBoundedThenDegrades(t *testing.T) {
	fc := &fakeClient{err: &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}}
	var delays []time.Duration
	s := &Summarizer{
		Client:      fc,
		Model:       "test-model",
		MaxAttempts: 3,
		sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}
	res := s.Summarize(context.Background(), testTopic(), testDocs(adviceText()))
	if fc.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fc.calls)
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(delays))
	}
	if delays[1] <= delays[0] {
		t.Fatalf("expected growing backoff, got %v", delays)
	}
	if res.Method == MethodAI {
		t.Fatal("exhausted retries must not be stamped as ai")
	}
}

func TestSummarize_NonRateLimitErrorFailsFast(t *testing.T) {
	fc := &fakeClient{err: &openai.APIError{HTTPStatusCode: 500, Message: "boom"}}
	s := &Summarizer{Client: fc, Model: "test-model", MaxAttempts: 3}
	res := s.Summarize(context.Background(), testTopic(), testDocs(adviceText()))
	if fc.calls != 1 {
		t.Fatalf("server errors must not retry, got %d calls", fc.calls)
	}
	if res.Method == MethodAI {
		t.Fatalf("unexpected method %q", res.Method)
	}
}

func TestSummarize_NilClientSkipsAI(t *testing.T) {
	s := &Summarizer{}
	res := s.Summarize(context.Background(), testTopic(), testDocs(adviceText()))
	if res.Method != MethodExtracted {
		t.Fatalf("expected extraction, got %q", res.Method)
	}
}

func TestSummarize_TemplatesWhenNoSources(t *testing.T) {
	s := &Summarizer{}
	res := s.Summarize(context.Background(), testTopic(), nil)
	if res.Method != MethodTemplate {
		t.Fatalf("expected templates, got %q", res.Method)
	}
	if len(res.Sets) == 0 {
		t.Fatal("templates must always produce cards")
	}
	for _, set := range res.Sets {
		if len(set.Tips) < MinTips || len(set.Tips) > MaxTips {
			t.Fatalf("template tip count out of range: %d", len(set.Tips))
		}
		if len(set.AgeGroups) != 2 {
			t.Fatalf("template age groups must come from the topic: %v", set.AgeGroups)
		}
	}
}

func TestSummarize_TemplatesForUnknownTopic(t *testing.T) {
	topic := topics.Topic{ID: "sibling_rivalry", Title: "Sibling Rivalry", AgeGroups: topics.DefaultAgeGroups()}
	s := &Summarizer{}
	res := s.Summarize(context.Background(), topic, nil)
	if res.Method != MethodTemplate {
		t.Fatalf("expected templates, got %q", res.Method)
	}
	if res.Sets[0].Title != "Sibling Rivalry" {
		t.Fatalf("generic template must take the topic title, got %q", res.Sets[0].Title)
	}
}

func TestSummarize_ReplyCacheSkipsSecondCall(t *testing.T) {
	fc := &fakeClient{reply: goodReply}
	s := &Summarizer{Client: fc, Model: "test-model", Cache: &cache.ReplyCache{Dir: t.TempDir()}}
	topic := testTopic()
	docs := testDocs(adviceText())
	if res := s.Summarize(context.Background(), topic, docs); res.Method != MethodAI {
		t.Fatalf("first run: expected ai, got %q", res.Method)
	}
	if res := s.Summarize(context.Background(), topic, docs); res.Method != MethodAI {
		t.Fatalf("second run: expected ai, got %q", res.Method)
	}
	if fc.calls != 1 {
		t.Fatalf("expected cached second run, got %d calls", fc.calls)
	}
}

func TestParseReply_WrappedObjectAndTruncation(t *testing.T) {
	raw := `{"cards": [{"title": "T", "tips": ["a1", "a2", "a3", "a4", "a5", "a6", "a7"]}]}`
	sets, err := parseReply([]byte(raw), testTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets[0].Tips) != MaxTips {
		t.Fatalf("expected truncation to %d tips, got %d", MaxTips, len(sets[0].Tips))
	}
	// The model invented no age groups, so the topic's own set applies.
	if len(sets[0].AgeGroups) != 2 {
		t.Fatalf("unexpected age groups: %v", sets[0].AgeGroups)
	}
}

func TestParseReply_DropsUnderfilledCards(t *testing.T) {
	raw := `[{"title": "Too Thin", "tips": ["only", "two"]}, {"title": "Fine", "tips": ["a", "b", "c"]}]`
	sets, err := parseReply([]byte(raw), testTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 1 || sets[0].Title != "Fine" {
		t.Fatalf("expected only the well-formed card, got %+v", sets)
	}
}

func TestParseReply_AllCardsInvalidIsError(t *testing.T) {
	raw := `[{"title": "", "tips": ["a", "b", "c", "d"]}]`
	if _, err := parseReply([]byte(raw), testTopic()); err == nil {
		t.Fatal("expected error when no card survives validation")
	}
}

func TestParseReply_RejectsInventedAgeGroups(t *testing.T) {
	raw := `[{"title": "T", "tips": ["a", "b", "c"], "age_groups": ["18-25"]}]`
	sets, err := parseReply([]byte(raw), testTopic())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets[0].AgeGroups) != 2 {
		t.Fatalf("invented groups must fall back to the topic's set, got %v", sets[0].AgeGroups)
	}
}

func TestStripFence(t *testing.T) {
	cases := map[string]string{
		"```json\n[1]\n```": "[1]",
		"```\n[1]\n```":     "[1]",
		"[1]":               "[1]",
		"  [1]  ":           "[1]",
	}
	for in, want := range cases {
		if got := stripFence(in); got != want {
			t.Fatalf("stripFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractTips_JunkTextFails(t *testing.T) {
	junk := strings.Repeat("Lorem ipsum dolor sit amet. ", 20)
	if _, ok := extractTips(testTopic(), testDocs(junk)); ok {
		t.Fatal("keyword-free text must not produce tips")
	}
}

func TestExtractTips_DetectsAgeGroupsFromText(t *testing.T) {
	text := adviceText() + " This advice suits a toddler best."
	sets, ok := extractTips(testTopic(), testDocs(text))
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	found := false
	for _, g := range sets[0].AgeGroups {
		if g == "2-4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected toddler age group, got %v", sets[0].AgeGroups)
	}
}
