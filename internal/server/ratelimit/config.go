package ratelimit

import (
	"time"

	"github.com/jonathan/consultant-match/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	// IdleTimeout drops per-client state not used for this long
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings builds the limiter configuration from the service settings.
func FromSettings(settings config.RateLimitConfig) *Config {
	whitelist := make(map[string]bool, len(settings.Whitelist))
	for _, ip := range settings.Whitelist {
		if ip != "" {
			whitelist[ip] = true
		}
	}

	return &Config{
		Enabled:         settings.Enabled,
		DefaultLimit:    settings.RequestsPerMinute,
		DefaultWindow:   time.Minute,
		DefaultBurst:    settings.Burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       whitelist,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Stored runs hit the database and may call the LLM for every candidate
		{Path: "/assignments/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 2},
		{Path: "/matches", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		// Reads fall through to the default limit; /health is unlimited
	}
}
