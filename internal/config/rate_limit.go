package config

import (
	"os"
	"strconv"
)

const defaultDailyLimit = 10

type RateLimitConfig struct {
	// DailyLimit is the number of chat requests one client identifier
	// may spend per UTC calendar day.
	DailyLimit int

	// Enabled toggles quota enforcement. When false the limiter is
	// bypassed entirely and responses carry no limit metadata.
	Enabled bool

	// IncludeLimitInfo merges a _limit section into successful responses.
	IncludeLimitInfo bool
}

func NewRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		DailyLimit:       getEnvInt("DAILY_MESSAGE_LIMIT", defaultDailyLimit),
		Enabled:          getEnvBool("RATE_LIMIT_ENABLED", true),
		IncludeLimitInfo: getEnvBool("INCLUDE_LIMIT_INFO", true),
	}
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
