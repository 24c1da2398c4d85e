// Package store persists generated cards as JSON files for the consuming app.
// Output is written per topic plus a combined file and a run summary; every
// write fully overwrites the previous run's file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/parentbud/carecards/internal/card"
	"github.com/parentbud/carecards/internal/topics"
)

// Writer writes run output under Dir, creating it on first use.
type Writer struct {
	Dir string
}

// TopicFile is the on-disk shape of one topic's card file.
type TopicFile struct {
	TopicID     string      `json:"topic_id"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Emoji       string      `json:"emoji"`
	ColorTheme  string      `json:"color_theme"`
	CardCount   int         `json:"card_count"`
	GeneratedAt string      `json:"generated_at"`
	Cards       []card.Card `json:"cards"`
}

// AllFile is the combined card file across every topic in the run.
type AllFile struct {
	Total int         `json:"total"`
	Cards []card.Card `json:"cards"`
}

// Summary describes one pipeline run for dashboards and debugging.
type Summary struct {
	RunID        string         `json:"run_id"`
	GeneratedAt  string         `json:"generated_at"`
	TotalCards   int            `json:"total_cards"`
	TopicCounts  map[string]int `json:"topic_counts"`
	MethodCounts map[string]int `json:"method_counts"`
	AgeGroups    map[string]int `json:"age_group_counts"`
	FailedTopics []string       `json:"failed_topics,omitempty"`
}

// WriteTopic persists one topic's cards as <topic-id>.json.
func (w *Writer) WriteTopic(topic topics.Topic, cards []card.Card) error {
	generatedAt := ""
	if len(cards) > 0 {
		generatedAt = cards[0].GeneratedAt
	}
	tf := TopicFile{
		TopicID:     topic.ID,
		Title:       topic.Title,
		Subtitle:    topic.Subtitle,
		Emoji:       topic.Emoji,
		ColorTheme:  topic.ColorTheme,
		CardCount:   len(cards),
		GeneratedAt: generatedAt,
		Cards:       cards,
	}
	return w.writeJSON(topic.ID+".json", tf)
}

// WriteAll persists the combined card list as all_cards.json.
func (w *Writer) WriteAll(cards []card.Card) error {
	return w.writeJSON("all_cards.json", AllFile{Total: len(cards), Cards: cards})
}

// WriteSummary persists the run summary as summary.json.
func (w *Writer) WriteSummary(s Summary) error {
	return w.writeJSON("summary.json", s)
}

// NewSummary aggregates run statistics over the produced cards. Each call
// mints a fresh run id.
func NewSummary(cards []card.Card, failedTopics []string) Summary {
	s := Summary{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		TotalCards:   len(cards),
		TopicCounts:  make(map[string]int),
		MethodCounts: make(map[string]int),
		AgeGroups:    make(map[string]int),
		FailedTopics: failedTopics,
	}
	for _, c := range cards {
		s.TopicCounts[c.TopicID]++
		s.MethodCounts[c.GenerationMethod]++
		for _, g := range c.AgeGroups {
			s.AgeGroups[g]++
		}
	}
	return s
}

// writeJSON marshals v indented and replaces the named file atomically, so a
// reader never observes a half-written document.
func (w *Writer) writeJSON(name string, v any) error {
	if w.Dir == "" {
		return fmt.Errorf("output dir not configured")
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
