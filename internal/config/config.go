// Package config loads service and CLI configuration from an optional file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CM_PORT
const EnvPrefix = "CM"

// Config holds the settings shared by the CLI commands and the HTTP server.
// All fields are optional; zero values fall back to Defaults.
type Config struct {
	DatabaseURL string `mapstructure:"database_url"` // PostgreSQL connection URL
	RedisURL    string `mapstructure:"redis_url"`    // Redis URL for the letter cache
	APIKey      string `mapstructure:"api_key"`      // Gemini API key
	Model       string `mapstructure:"model"`        // Gemini model used for letters

	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	Seed    *uint64 `mapstructure:"seed"`    // Fixed jitter seed; random when unset
	Workers int     `mapstructure:"workers"` // Concurrent scoring tasks; GOMAXPROCS when 0
	Letters bool    `mapstructure:"letters"` // Generate match letters by default

	LetterCacheTTL time.Duration `mapstructure:"letter_cache_ttl"`
	LetterStyle    string        `mapstructure:"letter_style"` // "full" or "short"

	Verbose  bool `mapstructure:"verbose"`
	JSONLogs bool `mapstructure:"json_logs"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	JWT       JWTConfig       `mapstructure:"jwt"`
}

// RateLimitConfig configures the per-client token bucket of the HTTP server
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
	// Whitelist holds client IPs that are never limited
	Whitelist []string `mapstructure:"whitelist"`
}

func (r RateLimitConfig) isZero() bool {
	return !r.Enabled && r.RequestsPerMinute == 0 && r.Burst == 0 && len(r.Whitelist) == 0
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Model:          "gemini-2.5-flash-lite",
		Port:           8080,
		CORSOrigins:    []string{"*"},
		LetterCacheTTL: 7 * 24 * time.Hour,
		LetterStyle:    "full",
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
			Whitelist:         []string{},
		},
		JWT: JWTConfig{Leeway: 30 * time.Second},
	}
}

// envAliases are the unprefixed variable names also honoured for a key
var envAliases = map[string]string{
	"database_url": "DATABASE_URL",
	"redis_url":    "REDIS_URL",
	"api_key":      "GEMINI_API_KEY",
	"port":         "PORT",
	"jwt.secret":   "JWT_SECRET",
}

// Load reads configuration from path (JSON, YAML or TOML, chosen by extension)
// and applies CM_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, alias); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", alias, err)
		}
	}
	if err := v.BindEnv("seed"); err != nil {
		return nil, fmt.Errorf("failed to bind seed: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("redis_url", d.RedisURL)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("model", d.Model)
	v.SetDefault("port", d.Port)
	v.SetDefault("cors_origins", d.CORSOrigins)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("letters", d.Letters)
	v.SetDefault("letter_cache_ttl", d.LetterCacheTTL)
	v.SetDefault("letter_style", d.LetterStyle)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("json_logs", d.JSONLogs)
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_minute", d.RateLimit.RequestsPerMinute)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("rate_limit.whitelist", d.RateLimit.Whitelist)
	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.issuer", d.JWT.Issuer)
	v.SetDefault("jwt.leeway", d.JWT.Leeway)
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("'port' must be between 0 and 65535, got %d", c.Port))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("'workers' must be non-negative"))
	}
	if c.LetterCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("'letter_cache_ttl' must be non-negative"))
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("'rate_limit' values must be non-negative"))
	}
	if c.LetterStyle != "" && c.LetterStyle != "full" && c.LetterStyle != "short" {
		errs = append(errs, fmt.Errorf("'letter_style' must be \"full\" or \"short\", got %q", c.LetterStyle))
	}
	if c.Letters && c.APIKey == "" {
		errs = append(errs, fmt.Errorf("'letters' requires 'api_key' (or GEMINI_API_KEY)"))
	}
	if err := c.JWT.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config error: %w", errors.Join(errs...))
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// Command-line values are merged over the file configuration this way.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.Seed == nil {
		result.Seed = defaults.Seed
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.LetterCacheTTL == 0 {
		result.LetterCacheTTL = defaults.LetterCacheTTL
	}
	if result.LetterStyle == "" {
		result.LetterStyle = defaults.LetterStyle
	}
	if result.RateLimit.isZero() {
		result.RateLimit = defaults.RateLimit
	}
	if result.JWT.Secret == "" {
		result.JWT = defaults.JWT
	}

	// Bools cannot distinguish unset from false; either side enabling wins
	result.Letters = result.Letters || defaults.Letters
	result.Verbose = result.Verbose || defaults.Verbose
	result.JSONLogs = result.JSONLogs || defaults.JSONLogs

	return result
}
