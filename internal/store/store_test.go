package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/parentbud/carecards/internal/card"
	"github.com/parentbud/carecards/internal/topics"
)

func sampleCards() []card.Card {
	return []card.Card{
		{
			ID: "aaa", TopicID: "tantrums", Title: "Calm First",
			Tips:      []string{"a", "b", "c"},
			AgeGroups: []string{"2-4", "4-6"},
			GeneratedAt: "2026-03-01T12:00:00Z", GenerationMethod: "ai",
		},
		{
			ID: "bbb", TopicID: "tantrums", Title: "Heading Off Meltdowns",
			Tips:      []string{"d", "e", "f"},
			AgeGroups: []string{"2-4"},
			GeneratedAt: "2026-03-01T12:00:00Z", GenerationMethod: "template",
		},
	}
}

func TestWriteTopic_RoundTrip(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	topic := topics.Topic{ID: "tantrums", Title: "Tantrums", Subtitle: "Big feelings", Emoji: "🌋", ColorTheme: "coral"}
	if err := w.WriteTopic(topic, sampleCards()); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir, "tantrums.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var tf TopicFile
	if err := json.Unmarshal(data, &tf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tf.TopicID != "tantrums" || tf.CardCount != 2 || len(tf.Cards) != 2 {
		t.Fatalf("unexpected file: %+v", tf)
	}
	if tf.GeneratedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("generated_at missing: %q", tf.GeneratedAt)
	}
}

func TestWriteTopic_OverwritesPreviousRun(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	topic := topics.Topic{ID: "tantrums", Title: "Tantrums"}
	if err := w.WriteTopic(topic, sampleCards()); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteTopic(topic, sampleCards()[:1]); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(w.Dir, "tantrums.json"))
	var tf TopicFile
	if err := json.Unmarshal(data, &tf); err != nil {
		t.Fatal(err)
	}
	if tf.CardCount != 1 {
		t.Fatalf("expected full overwrite, got %d cards", tf.CardCount)
	}
}

func TestWriteAll(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	if err := w.WriteAll(sampleCards()); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(w.Dir, "all_cards.json"))
	var af AllFile
	if err := json.Unmarshal(data, &af); err != nil {
		t.Fatal(err)
	}
	if af.Total != 2 || len(af.Cards) != 2 {
		t.Fatalf("unexpected combined file: %+v", af)
	}
}

func TestNewSummary_Aggregates(t *testing.T) {
	s := NewSummary(sampleCards(), []string{"sleep"})
	if s.RunID == "" {
		t.Fatal("expected a run id")
	}
	if s.TotalCards != 2 {
		t.Fatalf("total: %d", s.TotalCards)
	}
	if s.TopicCounts["tantrums"] != 2 {
		t.Fatalf("topic counts: %v", s.TopicCounts)
	}
	if s.MethodCounts["ai"] != 1 || s.MethodCounts["template"] != 1 {
		t.Fatalf("method counts: %v", s.MethodCounts)
	}
	if s.AgeGroups["2-4"] != 2 || s.AgeGroups["4-6"] != 1 {
		t.Fatalf("age group counts: %v", s.AgeGroups)
	}
	if len(s.FailedTopics) != 1 || s.FailedTopics[0] != "sleep" {
		t.Fatalf("failed topics: %v", s.FailedTopics)
	}
	two := NewSummary(nil, nil)
	if two.RunID == s.RunID {
		t.Fatal("each summary must mint a fresh run id")
	}
}

func TestWriteSummary_File(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	if err := w.WriteSummary(NewSummary(sampleCards(), nil)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(w.Dir, "summary.json")); err != nil {
		t.Fatalf("summary.json missing: %v", err)
	}
}
