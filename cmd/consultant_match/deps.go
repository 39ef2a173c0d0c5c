package main

import (
	"context"
	"fmt"

	"github.com/jonathan/consultant-match/internal/cache"
	"github.com/jonathan/consultant-match/internal/db"
	"github.com/jonathan/consultant-match/internal/letters"
	"github.com/jonathan/consultant-match/internal/llm"
	"github.com/jonathan/consultant-match/internal/matching"
)

// newScorer builds the scorer from the configured worker count and seed
func (a *app) newScorer() *matching.Scorer {
	cfg := matching.DefaultConfig()
	cfg.Workers = a.cfg.Workers
	cfg.Jitter = matching.JitterFromSeed(a.cfg.Seed)
	return matching.NewScorer(cfg, a.logger)
}

// openCache connects to Redis when a URL is configured; otherwise the cache bypasses
func (a *app) openCache(ctx context.Context) *cache.Redis {
	return cache.NewRedis(ctx, a.cfg.RedisURL, a.cfg.LetterCacheTTL, a.logger)
}

// letterFunc builds the Gemini letter generator. The returned closer releases the client.
func (a *app) letterFunc(ctx context.Context, c *cache.Redis) (matching.LetterFunc, func(), error) {
	llmConfig := llm.DefaultConfig()
	if a.cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierLite, a.cfg.Model)
	}

	client, err := llm.NewGeminiClient(ctx, llmConfig, a.cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create letter generator: %w", err)
	}

	generator := letters.NewGenerator(client, a.logger,
		letters.WithCache(c),
		letters.WithTTL(a.cfg.LetterCacheTTL),
		letters.WithStyle(letters.Style(a.cfg.LetterStyle)),
	)
	return generator.Func(), func() { _ = client.Close() }, nil
}

// connectDB opens the database configured by database_url
func (a *app) connectDB(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (set DATABASE_URL or CM_DATABASE_URL)")
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
