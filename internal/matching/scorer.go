package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/consultant-match/internal/logging"
	"github.com/jonathan/consultant-match/internal/types"
)

// Config controls how a Scorer matches items and draws jitter.
// Zero values fall back to the documented defaults.
type Config struct {
	// Skills matches required skills against consultant skills (default: bidirectional substring)
	Skills ItemMatcher
	// Values matches required values against consultant values (default: one-directional substring)
	Values ItemMatcher
	// Jitter feeds the success probability (default: RandomJitter)
	Jitter JitterSource
	// Workers bounds concurrent scoring tasks (default: GOMAXPROCS)
	Workers int
	// Limit caps the number of returned results (default: types.MaxMatchResults)
	Limit int
}

// DefaultConfig returns the scoring configuration with the lenient substring matchers.
func DefaultConfig() Config {
	return Config{
		Skills:  SubstringMatcher{Bidirectional: true},
		Values:  SubstringMatcher{},
		Jitter:  RandomJitter{},
		Workers: runtime.GOMAXPROCS(0),
		Limit:   types.MaxMatchResults,
	}
}

// Scorer ranks consultants against an assignment. It holds no per-call state
// and is safe for concurrent use.
type Scorer struct {
	config Config
	logger *zap.Logger
}

// NewScorer creates a Scorer, filling unset config fields from DefaultConfig.
func NewScorer(cfg Config, logger *zap.Logger) *Scorer {
	defaults := DefaultConfig()
	if cfg.Skills == nil {
		cfg.Skills = defaults.Skills
	}
	if cfg.Values == nil {
		cfg.Values = defaults.Values
	}
	if cfg.Jitter == nil {
		cfg.Jitter = defaults.Jitter
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaults.Limit
	}

	return &Scorer{config: cfg, logger: logging.OrNop(logger)}
}

// WithJitter returns a copy of the scorer drawing jitter from j
func (s *Scorer) WithJitter(j JitterSource) *Scorer {
	if j == nil {
		return s
	}
	cfg := s.config
	cfg.Jitter = j
	return &Scorer{config: cfg, logger: s.logger}
}

// ScoreMatches scores every consultant against the assignment and returns the
// best matches sorted by total score, highest first. Equal scores keep their
// input order. Nil consultants and consultants whose scoring fails are logged
// and left out; the only error returned is a cancelled context.
func (s *Scorer) ScoreMatches(ctx context.Context, assignment *types.Assignment, consultants []*types.Consultant) ([]types.MatchResult, error) {
	if assignment == nil {
		assignment = &types.Assignment{}
	}

	// Lists are scored as given: blank items count toward the totals but never match
	requiredSkills := assignment.RequiredSkills
	requiredValues := assignment.RequiredValues

	slots := make([]*types.MatchResult, len(consultants))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i, consultant := range consultants {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			result, err := s.scoreOne(i, assignment, requiredSkills, requiredValues, consultant)
			if err != nil {
				s.logger.Warn("skipping consultant",
					zap.Int("index", i),
					zap.String("consultant_id", consultantID(consultant)),
					zap.Error(err),
				)
				return nil
			}

			slots[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]types.MatchResult, 0, len(slots))
	for _, result := range slots {
		if result != nil {
			results = append(results, *result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalMatchScore > results[j].TotalMatchScore
	})

	if len(results) > s.config.Limit {
		results = results[:s.config.Limit]
	}

	s.logger.Debug("scored consultants",
		zap.String("assignment_id", assignment.ID),
		zap.Int("candidates", len(consultants)),
		zap.Int("returned", len(results)),
	)

	return results, nil
}

// scoreOne scores a single consultant, converting a panic into an error so one
// malformed record cannot abort the batch.
func (s *Scorer) scoreOne(index int, assignment *types.Assignment, requiredSkills, requiredValues []string, consultant *types.Consultant) (result *types.MatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	if consultant == nil {
		return nil, fmt.Errorf("consultant record is nil")
	}

	technical, matchedSkills := computeTechnicalFit(s.config.Skills, requiredSkills, consultant.Skills, consultant.Years())
	cultural, matchedValues := computeCulturalFit(s.config.Values, assignment, requiredValues, consultant, consultant.Values)
	total := computeTotalScore(technical, cultural)

	return &types.MatchResult{
		Consultant: consultant,
		Scores: types.Scores{
			TechnicalFit:    technical,
			CulturalFit:     cultural,
			TotalMatchScore: total,
		},
		MatchedSkills:      matchedSkills,
		MatchedValues:      matchedValues,
		SuccessProbability: computeSuccessProbability(total, s.config.Jitter.Jitter(index)),
	}, nil
}

// ScoreMatches scores consultants with the default configuration.
func ScoreMatches(assignment *types.Assignment, consultants []*types.Consultant) []types.MatchResult {
	// Background context is never cancelled, so no error can occur
	results, _ := NewScorer(DefaultConfig(), nil).ScoreMatches(context.Background(), assignment, consultants)
	return results
}

func consultantID(c *types.Consultant) string {
	if c == nil {
		return ""
	}
	return c.ID
}
