// Package card assembles the final persisted care-card records from
// summarizer output and topic metadata.
package card

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/summarize"
	"github.com/parentbud/carecards/internal/topics"
)

// Card is the persisted record consumed by the app frontend. Field names are
// part of the storage contract and must stay stable.
type Card struct {
	ID               string   `json:"id"`
	TopicID          string   `json:"topic_id"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	Tips             []string `json:"tips"`
	AgeGroups        []string `json:"age_groups"`
	Emoji            string   `json:"emoji"`
	ColorTheme       string   `json:"color_theme"`
	SourceURLs       []string `json:"source_urls"`
	GeneratedAt      string   `json:"generated_at"`
	GenerationMethod string   `json:"generation_method"`
}

// Assembler stamps cards with topic metadata and deterministic ids.
type Assembler struct {
	Catalog *topics.Catalog

	// now is swappable in tests.
	now func() time.Time
}

// NewAssembler builds an assembler over the loaded catalog.
func NewAssembler(catalog *topics.Catalog) *Assembler {
	return &Assembler{Catalog: catalog, now: time.Now}
}

// Build turns a summarizer result into cards for the topic. The topic id must
// exist in the catalog; tip sets inherit the topic's display metadata wherever
// the summarizer left a field blank. The generation method is stamped from the
// result, never guessed.
func (a *Assembler) Build(topicID string, res summarize.Result, docs []extract.SourceDocument) ([]Card, error) {
	topic, err := a.Catalog.ByID(topicID)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, d.URL)
	}
	generatedAt := a.clock()().UTC().Format(time.RFC3339)

	cards := make([]Card, 0, len(res.Sets))
	for i, set := range res.Sets {
		c := Card{
			ID:               CardID(topic.ID, i, set.Title),
			TopicID:          topic.ID,
			Title:            set.Title,
			Subtitle:         set.Subtitle,
			Tips:             append([]string(nil), set.Tips...),
			AgeGroups:        append([]string(nil), set.AgeGroups...),
			Emoji:            topic.Emoji,
			ColorTheme:       topic.ColorTheme,
			SourceURLs:       urls,
			GeneratedAt:      generatedAt,
			GenerationMethod: string(res.Method),
		}
		if c.Title == "" {
			c.Title = topic.Title
		}
		if c.Subtitle == "" {
			c.Subtitle = topic.Subtitle
		}
		if len(c.AgeGroups) == 0 {
			c.AgeGroups = append([]string(nil), topic.AgeGroups...)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func (a *Assembler) clock() func() time.Time {
	if a.now != nil {
		return a.now
	}
	return time.Now
}

// CardID derives a stable id from topic, position and title, so reruns over
// unchanged content keep the same ids and the consuming app's bookmarks
// survive regeneration.
func CardID(topicID string, index int, title string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", topicID, index, title)))
	return hex.EncodeToString(h[:])[:24]
}
