package app

import "time"

// Config holds runtime configuration for one pipeline run.
type Config struct {
	// TopicsPath points at the YAML topic catalog.
	TopicsPath string
	// OutputDir receives the per-topic JSON files, all_cards.json and
	// summary.json.
	OutputDir string
	// TopicID, when set, restricts the run to a single topic.
	TopicID string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	// NoAI disables model calls even when an endpoint is configured; cards
	// then come from extraction or templates.
	NoAI bool

	// Fetching
	UserAgent         string
	MinDelay          time.Duration
	MaxDelay          time.Duration
	PerRequestTimeout time.Duration

	// Workers bounds concurrent topic processing. Zero means 1.
	Workers int

	// Behavior
	CacheDir    string
	CacheClear  bool
	CacheMaxAge time.Duration
	Verbose     bool
}
