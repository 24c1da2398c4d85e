package topics

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// ErrUnknownTopic is returned when a topic id is not present in the catalog.
// It is the only configuration error that aborts a whole run.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic is one subject area with its curated source URLs and display metadata.
// The catalog is loaded once at startup and is read-only for the run.
type Topic struct {
	ID         string   `yaml:"id" json:"id"`
	Title      string   `yaml:"title" json:"title"`
	Subtitle   string   `yaml:"subtitle" json:"subtitle"`
	Emoji      string   `yaml:"emoji" json:"emoji"`
	ColorTheme string   `yaml:"color_theme" json:"color_theme"`
	AgeGroups  []string `yaml:"age_groups" json:"age_groups"`
	URLs       []string `yaml:"urls" json:"urls"`
	PDFs       []string `yaml:"pdfs" json:"pdfs"`
}

// Catalog holds the configured topics in file order with id lookup.
type Catalog struct {
	Topics []Topic

	byID map[string]int
}

// Load reads a topic catalog from a YAML file. JSON files parse too since the
// schema is a plain mapping and yaml.v3 accepts JSON syntax.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a topic catalog document. The document is either
// a bare list of topics or a mapping with a top-level "topics" key.
func Parse(data []byte) (*Catalog, error) {
	var wrapped struct {
		Topics []Topic `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil || len(wrapped.Topics) == 0 {
		var list []Topic
		if err2 := yaml.Unmarshal(data, &list); err2 != nil {
			if err == nil {
				err = err2
			}
			return nil, fmt.Errorf("parse topics config: %w", err)
		}
		wrapped.Topics = list
	}
	c := &Catalog{Topics: wrapped.Topics, byID: make(map[string]int, len(wrapped.Topics))}
	for i, t := range c.Topics {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, fmt.Errorf("topic %d: missing id", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("topic %q: duplicate id", id)
		}
		if strings.TrimSpace(t.Title) == "" {
			c.Topics[i].Title = displayTitle(id)
		}
		if len(t.AgeGroups) == 0 {
			c.Topics[i].AgeGroups = DefaultAgeGroups()
		}
		c.byID[id] = i
	}
	if len(c.Topics) == 0 {
		return nil, errors.New("topics config: no topics defined")
	}
	return c, nil
}

// ByID returns the topic for the given id, or ErrUnknownTopic.
func (c *Catalog) ByID(id string) (Topic, error) {
	if c == nil || c.byID == nil {
		return Topic{}, ErrUnknownTopic
	}
	i, ok := c.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTopic, id)
	}
	return c.Topics[i], nil
}

// IDs returns all configured topic ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}

// DefaultAgeGroups is the full age range used when a topic does not narrow it.
func DefaultAgeGroups() []string {
	return []string{"2-4", "4-6", "6-8", "8-10"}
}

// displayTitle derives a human title from an id like "potty_training".
func displayTitle(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
