package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/parentbud/carecards/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		topicsPath  string
		outDir      string
		topicID     string
		noAI        bool
		workers     int
		llmBaseURL  string
		llmModel    string
		llmKey      string
		userAgent   string
		minDelay    time.Duration
		maxDelay    time.Duration
		reqTimeout  time.Duration
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
		verbose     bool
	)

	flag.StringVar(&topicsPath, "config", "topics.yaml", "Path to the topic catalog YAML")
	flag.StringVar(&outDir, "out", "cards", "Directory to write card JSON files")
	flag.StringVar(&topicID, "topic", "", "Process only this topic id")
	flag.BoolVar(&noAI, "no-ai", false, "Skip AI generation; use extraction and templates only")
	flag.IntVar(&workers, "workers", 1, "Number of topics processed concurrently")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.StringVar(&userAgent, "ua", "", "Custom User-Agent for article requests")
	flag.DurationVar(&minDelay, "delay.min", time.Second, "Minimum politeness delay between requests")
	flag.DurationVar(&maxDelay, "delay.max", 3*time.Second, "Maximum politeness delay between requests")
	flag.DurationVar(&reqTimeout, "timeout", 20*time.Second, "Per-request timeout")
	flag.StringVar(&cacheDir, "cache.dir", ".carecards-cache", "Cache directory path")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		TopicsPath:        topicsPath,
		OutputDir:         outDir,
		TopicID:           topicID,
		NoAI:              noAI,
		Workers:           workers,
		LLMBaseURL:        llmBaseURL,
		LLMModel:          llmModel,
		LLMAPIKey:         llmKey,
		UserAgent:         userAgent,
		MinDelay:          minDelay,
		MaxDelay:          maxDelay,
		PerRequestTimeout: reqTimeout,
		CacheDir:          cacheDir,
		CacheMaxAge:       cacheMaxAge,
		CacheClear:        cacheClear,
		Verbose:           verbose,
	}
	cfg.ApplyEnv()

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}
