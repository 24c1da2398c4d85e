package app

import "os"

// ApplyEnv fills LLM settings from the environment when the corresponding
// flag was left empty. Flags always win over the environment.
func (c *Config) ApplyEnv() {
	if c.LLMBaseURL == "" {
		c.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if c.LLMModel == "" {
		c.LLMModel = os.Getenv("LLM_MODEL")
	}
	if c.LLMAPIKey == "" {
		c.LLMAPIKey = os.Getenv("LLM_API_KEY")
	}
}
