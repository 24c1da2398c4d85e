// Package summarize turns a topic's extracted source documents into tip sets
// for care cards. The AI path is attempted first when a model client is
// configured; every failure degrades through sentence extraction down to
// static templates, which cannot fail. A topic therefore always yields cards.
package summarize

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parentbud/carecards/internal/cache"
	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/llm"
	"github.com/parentbud/carecards/internal/topics"
)

// Method records which strategy actually produced the tips. It must reflect
// the path taken, not the path attempted.
type Method string

const (
	MethodAI        Method = "ai"
	MethodExtracted Method = "extracted"
	MethodTemplate  Method = "template"
)

// TipSet is one card's worth of content before assembly.
type TipSet struct {
	Title     string
	Subtitle  string
	Tips      []string
	AgeGroups []string
}

// MinTips and MaxTips bound every tip set the summarizer emits.
const (
	MinTips = 3
	MaxTips = 5
)

// Result carries the produced tip sets and the method that made them.
type Result struct {
	Sets   []TipSet
	Method Method
}

// Summarizer produces tip sets for one topic at a time.
type Summarizer struct {
	// Client is nil when AI generation is disabled or unconfigured.
	Client llm.Client
	Model  string
	// Cache, when set, stores raw model replies keyed by model+prompt.
	Cache *cache.ReplyCache
	// MaxAttempts bounds rate-limit retries, initial call included. Zero
	// means 3.
	MaxAttempts int
	// CardsPerTopic is the number of cards requested from the model. Zero
	// means 3.
	CardsPerTopic int
	// PerDocChars and TotalChars override the prompt excerpt budget.
	PerDocChars int
	TotalChars  int

	// sleep is swappable in tests so backoff does not stall them.
	sleep func(ctx context.Context, d time.Duration) error
}

// Summarize produces at least one tip set for the topic. It never returns an
// error: AI and extraction failures degrade, and the template path is total.
func (s *Summarizer) Summarize(ctx context.Context, topic topics.Topic, docs []extract.SourceDocument) Result {
	if s.Client != nil && len(docs) > 0 {
		sets, err := s.generateWithAI(ctx, topic, docs)
		if err == nil && len(sets) > 0 {
			return Result{Sets: sets, Method: MethodAI}
		}
		log.Warn().Err(err).Str("topic", topic.ID).Msg("ai generation failed, degrading to fallback")
	}

	if sets, ok := extractTips(topic, docs); ok {
		return Result{Sets: sets, Method: MethodExtracted}
	}

	return Result{Sets: templateTips(topic), Method: MethodTemplate}
}

func (s *Summarizer) doSleep(ctx context.Context, d time.Duration) error {
	if s.sleep != nil {
		return s.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
