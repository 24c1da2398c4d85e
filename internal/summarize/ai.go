package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/parentbud/carecards/internal/budget"
	"github.com/parentbud/carecards/internal/cache"
	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/topics"
)

const systemPrompt = "You are a pediatric parenting coach writing short, practical advice cards. " +
	"Answer with JSON only, no prose and no markdown outside the JSON."

const defaultMaxAttempts = 3

// rawCard mirrors the JSON contract the prompt asks the model for.
type rawCard struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	Tips      []string `json:"tips"`
	AgeGroups []string `json:"age_groups"`
}

// generateWithAI runs one prompt for the topic and parses the reply into tip
// sets. Only HTTP 429 replies are retried; any other failure returns
// immediately so the caller can degrade.
func (s *Summarizer) generateWithAI(ctx context.Context, topic topics.Topic, docs []extract.SourceDocument) ([]TipSet, error) {
	prompt := s.buildPrompt(topic, docs)
	key := cache.ReplyKey(s.Model, prompt)

	if s.Cache != nil {
		if b, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
			if sets, err := parseReply(b, topic); err == nil {
				log.Debug().Str("topic", topic.ID).Msg("model reply served from cache")
				return sets, nil
			}
			// A stale malformed entry must not block a fresh call.
		}
	}

	content, err := s.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}
	sets, err := parseReply([]byte(content), topic)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Save(ctx, key, []byte(content)); err != nil {
			log.Warn().Err(err).Msg("saving model reply to cache failed")
		}
	}
	return sets, nil
}

func (s *Summarizer) callModel(ctx context.Context, prompt string) (string, error) {
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := s.Client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("model returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err
		if !isRateLimited(err) || attempt == attempts {
			break
		}
		delay := time.Duration(attempt) * 500 * time.Millisecond
		log.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("rate limited, backing off")
		if err := s.doSleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("chat completion: %w", lastErr)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429
}

// buildPrompt assembles the generation request from budgeted source excerpts.
func (s *Summarizer) buildPrompt(topic topics.Topic, docs []extract.SourceDocument) string {
	excerpts := make([]budget.Excerpt, 0, len(docs))
	for _, d := range docs {
		excerpts = append(excerpts, budget.Excerpt{Title: d.Title, URL: d.URL, Text: d.Text})
	}
	excerpts = budget.Fit(excerpts, s.PerDocChars, s.TotalChars)

	cards := s.CardsPerTopic
	if cards <= 0 {
		cards = 3
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic.Title)
	if topic.Subtitle != "" {
		fmt.Fprintf(&b, "Focus: %s\n", topic.Subtitle)
	}
	fmt.Fprintf(&b, "Age groups: %s\n\n", strings.Join(topic.AgeGroups, ", "))
	b.WriteString("Source material:\n\n")
	for i, e := range excerpts {
		fmt.Fprintf(&b, "--- Source %d: %s (%s) ---\n%s\n\n", i+1, e.Title, e.URL, e.Text)
	}
	fmt.Fprintf(&b, "Write %d advice cards for parents based on the sources above.\n", cards)
	b.WriteString("Each card has a short title, a one-line subtitle, and exactly 5 tips. ")
	b.WriteString("Tips are complete sentences a parent can act on today, 10 to 30 words each. ")
	fmt.Fprintf(&b, "Pick age_groups from this set only: %s.\n\n", strings.Join(topic.AgeGroups, ", "))
	b.WriteString(`Reply with a JSON array in exactly this shape:
[{"title": "...", "subtitle": "...", "tips": ["...", "...", "...", "...", "..."], "age_groups": ["..."]}]`)
	return b.String()
}

// parseReply decodes the model output and keeps only well-formed cards. Zero
// valid cards is an error so the caller degrades rather than emitting junk.
func parseReply(raw []byte, topic topics.Topic) ([]TipSet, error) {
	body := stripFence(string(raw))
	var cards []rawCard
	if err := json.Unmarshal([]byte(body), &cards); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Cards []rawCard `json:"cards"`
		}
		if err2 := json.Unmarshal([]byte(body), &wrapped); err2 != nil || len(wrapped.Cards) == 0 {
			return nil, fmt.Errorf("parse model reply: %w", err)
		}
		cards = wrapped.Cards
	}

	sets := make([]TipSet, 0, len(cards))
	for _, c := range cards {
		tips := make([]string, 0, len(c.Tips))
		for _, tip := range c.Tips {
			if t := strings.TrimSpace(tip); t != "" {
				tips = append(tips, t)
			}
		}
		if len(tips) > MaxTips {
			tips = tips[:MaxTips]
		}
		if strings.TrimSpace(c.Title) == "" || len(tips) < MinTips {
			continue
		}
		groups := validAgeGroups(c.AgeGroups, topic.AgeGroups)
		sets = append(sets, TipSet{
			Title:     strings.TrimSpace(c.Title),
			Subtitle:  strings.TrimSpace(c.Subtitle),
			Tips:      tips,
			AgeGroups: groups,
		})
	}
	if len(sets) == 0 {
		return nil, errors.New("model reply contained no usable cards")
	}
	return sets, nil
}

// validAgeGroups keeps only groups the topic allows, falling back to the
// topic's full set when the model invented its own labels.
func validAgeGroups(got, allowed []string) []string {
	keep := make([]string, 0, len(got))
	for _, g := range got {
		for _, a := range allowed {
			if g == a {
				keep = append(keep, g)
				break
			}
		}
	}
	if len(keep) == 0 {
		return append([]string(nil), allowed...)
	}
	return keep
}

// stripFence removes a markdown code fence around a JSON payload, with or
// without a language tag.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
