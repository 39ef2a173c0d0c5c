// Package letters writes short LLM-generated introductions for matched consultants.
package letters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/cache"
	"github.com/jonathan/consultant-match/internal/llm"
	"github.com/jonathan/consultant-match/internal/logging"
	"github.com/jonathan/consultant-match/internal/matching"
	"github.com/jonathan/consultant-match/internal/prompts"
	"github.com/jonathan/consultant-match/internal/types"
)

// Style selects the letter prompt
type Style string

const (
	StyleFull  Style = "full"  // A short introduction letter
	StyleShort Style = "short" // Two sentences
)

const (
	promptFile = "letters.json"

	// DefaultCacheTTL keeps a letter as long as its score does not change
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// TextCache stores generated letters
type TextCache interface {
	GetText(ctx context.Context, key string) (string, bool, error)
	SetText(ctx context.Context, key, value string, ttl time.Duration) error
}

var _ TextCache = (*cache.Redis)(nil)

// Generator produces match letters through an llm.Client.
type Generator struct {
	client llm.Client
	cache  TextCache
	tier   llm.ModelTier
	style  Style
	ttl    time.Duration
	logger *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithCache caches letters by assignment, consultant and total score
func WithCache(c TextCache) Option {
	return func(g *Generator) { g.cache = c }
}

// WithStyle selects the letter prompt. Unknown styles fall back to StyleFull.
func WithStyle(style Style) Option {
	return func(g *Generator) {
		if style == StyleShort {
			g.style = StyleShort
		}
	}
}

// WithTTL overrides DefaultCacheTTL
func WithTTL(ttl time.Duration) Option {
	return func(g *Generator) { g.ttl = ttl }
}

// NewGenerator creates a Generator
func NewGenerator(client llm.Client, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		tier:   llm.TierLite,
		style:  StyleFull,
		ttl:    DefaultCacheTTL,
		logger: logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the match letter for one scored consultant
func (g *Generator) Generate(ctx context.Context, assignment *types.Assignment, consultant *types.Consultant, scores types.Scores) (string, error) {
	if assignment == nil {
		assignment = &types.Assignment{}
	}
	if consultant == nil {
		return "", &GenerationError{Cause: errNilConsultant}
	}

	prompt, err := BuildPrompt(g.style, assignment, consultant, scores)
	if err != nil {
		return "", &GenerationError{ConsultantID: consultant.ID, Cause: err}
	}

	key := cacheKey(g.style, assignment, consultant, prompt)
	if key != "" && g.cache != nil {
		letter, ok, err := g.cache.GetText(ctx, key)
		if err != nil {
			g.logger.Debug("letter cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return letter, nil
		}
	}

	letter, err := g.client.GenerateText(ctx, prompt, g.tier)
	if err != nil {
		return "", &GenerationError{ConsultantID: consultant.ID, Cause: err}
	}
	letter = llm.CleanText(letter)
	if letter == "" {
		return "", &GenerationError{ConsultantID: consultant.ID, Cause: ErrEmptyLetter}
	}

	if key != "" && g.cache != nil {
		if err := g.cache.SetText(ctx, key, letter, g.ttl); err != nil {
			g.logger.Debug("letter cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	g.logger.Debug("generated match letter",
		zap.String("consultant_id", consultant.ID),
		zap.Int("length", len(letter)),
		zap.String("preview", logging.Truncate(letter, 60)),
	)
	return letter, nil
}

// Func adapts the generator to the scorer's letter hook
func (g *Generator) Func() matching.LetterFunc {
	return g.Generate
}

func promptKey(style Style) string {
	if style == StyleShort {
		return "match-letter-short"
	}
	return "match-letter"
}

// BuildPrompt renders the letter prompt for a consultant
func BuildPrompt(style Style, assignment *types.Assignment, consultant *types.Consultant, scores types.Scores) (string, error) {
	return prompts.Fill(promptFile, promptKey(style), map[string]string{
		"AssignmentTitle":  orDash(assignment.Title),
		"Company":          orDash(assignment.Company),
		"RequiredSkills":   joinOrDash(assignment.RequiredSkills),
		"RequiredValues":   joinOrDash(assignment.RequiredValues),
		"ConsultantName":   orDash(consultant.Name),
		"ConsultantTitle":  orDash(consultant.Title),
		"ExperienceYears":  strconv.Itoa(max(0, consultant.Years())),
		"ConsultantSkills": joinOrDash(consultant.Skills),
		"ConsultantValues": joinOrDash(consultant.Values),
		"TechnicalFit":     strconv.Itoa(scores.TechnicalFit),
		"CulturalFit":      strconv.Itoa(scores.CulturalFit),
		"TotalMatchScore":  strconv.Itoa(scores.TotalMatchScore),
	})
}

// cacheKey is empty for records without ids, which are never cached. The
// prompt digest ties the entry to the exact inputs, so edited records or
// reused ids miss the cache.
func cacheKey(style Style, assignment *types.Assignment, consultant *types.Consultant, prompt string) string {
	if strings.TrimSpace(assignment.ID) == "" || strings.TrimSpace(consultant.ID) == "" {
		return ""
	}
	return cache.Key("letters", string(style), assignment.ID, consultant.ID, promptDigest(prompt))
}

// promptDigest is the first 16 hex characters of the prompt's SHA-256
func promptDigest(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

func joinOrDash(items []string) string {
	return orDash(strings.Join(items, ", "))
}
