package config

import (
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.deepseek.com"

	// deepseek-chat is the cheap chat-tier model. The reasoning-tier
	// models (deepseek-reasoner) cost considerably more and must never
	// become the silent default.
	defaultModel = "deepseek-chat"

	defaultUpstreamTimeout = 2 * time.Minute
)

// RelayConfig holds everything the completion relay needs to reach the
// upstream chat-completion service.
type RelayConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	Timeout      time.Duration
	SystemPrompt string
}

func NewRelayConfig() *RelayConfig {
	return &RelayConfig{
		APIKey:       os.Getenv("DEEPSEEK_API_KEY"),
		Model:        getEnv("DEEPSEEK_MODEL", defaultModel),
		BaseURL:      getEnv("DEEPSEEK_BASE_URL", defaultBaseURL),
		Timeout:      getEnvDuration("UPSTREAM_TIMEOUT_SECONDS", defaultUpstreamTimeout),
		SystemPrompt: os.Getenv("SYSTEM_PROMPT"),
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvInt(key, 0)
	if seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
