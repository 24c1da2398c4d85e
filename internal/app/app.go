// Package app wires the pipeline stages together and drives a run: load the
// topic catalog, fetch and extract each topic's sources, summarize them into
// tip sets, and persist the assembled cards.
package app

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parentbud/carecards/internal/cache"
	"github.com/parentbud/carecards/internal/card"
	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/fetch"
	"github.com/parentbud/carecards/internal/llm"
	"github.com/parentbud/carecards/internal/robots"
	"github.com/parentbud/carecards/internal/store"
	"github.com/parentbud/carecards/internal/summarize"
	"github.com/parentbud/carecards/internal/topics"
)

const defaultUserAgent = "carecards-pipeline/1.0 (+https://github.com/parentbud/carecards)"

// App holds the wired pipeline for one run.
type App struct {
	cfg        Config
	catalog    *topics.Catalog
	fetcher    *fetch.Client
	chain      *extract.Chain
	summarizer *summarize.Summarizer
	assembler  *card.Assembler
	writer     *store.Writer

	docs *docCache
}

// New loads the catalog and builds every stage. A TopicID that is not in the
// catalog is the one configuration error that aborts before any work starts.
func New(cfg Config) (*App, error) {
	catalog, err := topics.Load(cfg.TopicsPath)
	if err != nil {
		return nil, err
	}
	if cfg.TopicID != "" {
		if _, err := catalog.ByID(cfg.TopicID); err != nil {
			return nil, err
		}
	}

	var bodyCache *cache.BodyCache
	var replyCache *cache.ReplyCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			_, _ = cache.PurgeByAge(filepath.Join(cfg.CacheDir, "body"), cfg.CacheMaxAge)
			_, _ = cache.PurgeByAge(filepath.Join(cfg.CacheDir, "llm"), cfg.CacheMaxAge)
		}
		bodyCache = &cache.BodyCache{Dir: filepath.Join(cfg.CacheDir, "body")}
		replyCache = &cache.ReplyCache{Dir: filepath.Join(cfg.CacheDir, "llm")}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	minDelay, maxDelay := cfg.MinDelay, cfg.MaxDelay
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = 3 * time.Second
	}
	timeout := cfg.PerRequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	fetcher := &fetch.Client{
		HTTPClient:        &http.Client{},
		UserAgent:         ua,
		PerRequestTimeout: timeout,
		Robots:            &robots.Manager{HTTPClient: &http.Client{Timeout: 10 * time.Second}, UserAgent: ua},
		Throttle:          fetch.NewThrottle(minDelay, maxDelay),
		Cache:             bodyCache,
	}

	var client llm.Client
	if !cfg.NoAI {
		if p := llm.NewProvider(cfg.LLMBaseURL, cfg.LLMAPIKey); p != nil {
			client = p
		}
	}
	if client == nil {
		log.Info().Msg("AI generation disabled; cards come from extraction or templates")
	}

	return &App{
		cfg:     cfg,
		catalog: catalog,
		fetcher: fetcher,
		chain:   extract.NewChain(),
		summarizer: &summarize.Summarizer{
			Client: client,
			Model:  cfg.LLMModel,
			Cache:  replyCache,
		},
		assembler: card.NewAssembler(catalog),
		writer:    &store.Writer{Dir: cfg.OutputDir},
		docs:      newDocCache(),
	}, nil
}

// selectedTopics returns the topics this run covers, in catalog order.
func (a *App) selectedTopics() ([]topics.Topic, error) {
	if a.cfg.TopicID == "" {
		return a.catalog.Topics, nil
	}
	t, err := a.catalog.ByID(a.cfg.TopicID)
	if err != nil {
		return nil, fmt.Errorf("select topic: %w", err)
	}
	return []topics.Topic{t}, nil
}

func (a *App) workers() int {
	if a.cfg.Workers <= 0 {
		return 1
	}
	return a.cfg.Workers
}
