// Package pipeline orchestrates a match run: load the assignment and the
// consultant pool, score, attach letters and persist the ranking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/cache"
	"github.com/jonathan/consultant-match/internal/db"
	"github.com/jonathan/consultant-match/internal/logging"
	"github.com/jonathan/consultant-match/internal/matching"
	"github.com/jonathan/consultant-match/internal/records"
	"github.com/jonathan/consultant-match/internal/types"
)

// Step names reported through ProgressEvent
const (
	StepLoadAssignment  = "load_assignment"
	StepLoadConsultants = "load_consultants"
	StepScore           = "score"
	StepLetters         = "letters"
	StepPersist         = "persist"
)

var (
	// ErrAssignmentNotFound is returned when the assignment id is unknown
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrLettersUnavailable is returned when letters are requested but no generator is configured
	ErrLettersUnavailable = errors.New("letter generation is not configured")
	// ErrNoStore is returned by stored-assignment operations when no database is configured
	ErrNoStore = errors.New("no database configured")
)

// Store is the persistence the runner needs; *db.DB satisfies it.
type Store interface {
	GetAssignment(ctx context.Context, id uuid.UUID) (*db.AssignmentRow, error)
	ListAssignments(ctx context.Context, limit int) ([]db.AssignmentRow, error)
	ListConsultants(ctx context.Context, filters db.ConsultantFilters) ([]db.ConsultantRow, error)
	SaveMatchRun(ctx context.Context, input db.MatchRunInput) (uuid.UUID, error)
	ListMatchResults(ctx context.Context, assignmentID uuid.UUID) (*db.MatchRun, []db.MatchResultRow, error)
	CreateAssignment(ctx context.Context, a *db.AssignmentRow) (*db.AssignmentRow, error)
	CreateConsultant(ctx context.Context, c *db.ConsultantRow) (*db.ConsultantRow, error)
}

var _ Store = (*db.DB)(nil)

// ResultCache holds the latest persisted ranking per assignment; *cache.Redis satisfies it.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var _ ResultCache = (*cache.Redis)(nil)

// LatestResultsTTL bounds how long a cached latest ranking is served
const LatestResultsTTL = 10 * time.Minute

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when a run makes progress
type ProgressCallback func(event ProgressEvent)

// Options configures a Runner
type Options struct {
	Scorer     *matching.Scorer
	Letters    matching.LetterFunc
	Logger     *zap.Logger
	OnProgress ProgressCallback
	// Cache serves LatestMatches; a new persisted run invalidates it
	Cache ResultCache
	// PageSize is the number of consultants read from the store per query
	// (default: db.DefaultListLimit)
	PageSize int
}

// MatchOptions tunes a single run
type MatchOptions struct {
	Letters bool
	Persist bool
	// Seed makes the success probabilities reproducible
	Seed *uint64
	// PoolLimit caps the number of consultants loaded from the store.
	// Zero loads the whole pool.
	PoolLimit int
	// OnProgress replaces the runner's callback for this run
	OnProgress ProgressCallback
}

// Runner executes match runs. Store may be nil for in-memory scoring only.
type Runner struct {
	store      Store
	scorer     *matching.Scorer
	letters    matching.LetterFunc
	logger     *zap.Logger
	onProgress ProgressCallback
	cache      ResultCache
	pageSize   int
}

// NewRunner creates a Runner
func NewRunner(store Store, opts Options) *Runner {
	logger := logging.OrNop(opts.Logger)
	scorer := opts.Scorer
	if scorer == nil {
		scorer = matching.NewScorer(matching.DefaultConfig(), logger)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = db.DefaultListLimit
	}
	return &Runner{
		store:      store,
		scorer:     scorer,
		letters:    opts.Letters,
		logger:     logger,
		onProgress: opts.OnProgress,
		cache:      opts.Cache,
		pageSize:   pageSize,
	}
}

func (r *Runner) emit(opts MatchOptions, step, message string, content any) {
	cb := r.onProgress
	if opts.OnProgress != nil {
		cb = opts.OnProgress
	}
	if cb != nil {
		cb(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Score ranks the given consultants against the assignment without touching the store
func (r *Runner) Score(ctx context.Context, assignment *types.Assignment, consultants []*types.Consultant, opts MatchOptions) (*types.MatchResults, error) {
	if opts.Letters && r.letters == nil {
		return nil, ErrLettersUnavailable
	}

	scorer := r.scorer
	if opts.Seed != nil {
		scorer = scorer.WithJitter(matching.SeededJitter{Seed: *opts.Seed})
	}

	results, err := scorer.ScoreMatches(ctx, assignment, consultants)
	if err != nil {
		return nil, fmt.Errorf("failed to score consultants: %w", err)
	}
	r.emit(opts, StepScore, fmt.Sprintf("scored %d consultants, kept %d", len(consultants), len(results)), results)

	if opts.Letters {
		if err := matching.AttachLetters(ctx, assignment, results, r.letters, r.logger); err != nil {
			return nil, fmt.Errorf("failed to generate letters: %w", err)
		}
		r.emit(opts, StepLetters, fmt.Sprintf("generated letters for %d consultants", countLetters(results)), nil)
	}

	out := &types.MatchResults{Results: results}
	if assignment != nil {
		out.AssignmentID = assignment.ID
	}
	return out, nil
}

// loadPool reads available consultants page by page until the store runs
// out or limit rows are loaded. A limit of zero or less loads everything.
func (r *Runner) loadPool(ctx context.Context, limit int) ([]db.ConsultantRow, error) {
	var pool []db.ConsultantRow
	for {
		size := r.pageSize
		if limit > 0 {
			size = min(size, limit-len(pool))
		}
		page, err := r.store.ListConsultants(ctx, db.ConsultantFilters{Limit: size, Offset: len(pool)})
		if err != nil {
			return nil, err
		}
		pool = append(pool, page...)

		if len(page) < size || (limit > 0 && len(pool) >= limit) {
			return pool, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// MatchAssignment scores the stored consultant pool against a stored assignment
// and, when asked, persists the ranking as a new run.
func (r *Runner) MatchAssignment(ctx context.Context, assignmentID uuid.UUID, opts MatchOptions) (*types.MatchResults, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}

	row, err := r.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssignmentNotFound, assignmentID)
	}
	assignment := records.FromAssignmentRow(*row)
	r.emit(opts, StepLoadAssignment, fmt.Sprintf("loaded assignment %q", assignment.Title), assignment)

	rows, err := r.loadPool(ctx, opts.PoolLimit)
	if err != nil {
		return nil, err
	}
	consultants := records.FromConsultantRows(rows)
	r.emit(opts, StepLoadConsultants, fmt.Sprintf("loaded %d consultants", len(consultants)), nil)

	out, err := r.Score(ctx, &assignment, consultants, opts)
	if err != nil {
		return nil, err
	}

	if opts.Persist {
		resultRows, err := records.ToMatchResultRows(out.Results)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare match results: %w", err)
		}

		input := db.MatchRunInput{
			AssignmentID:   assignmentID,
			CandidateCount: len(consultants),
			Results:        resultRows,
		}
		if opts.Seed != nil {
			seed := int64(*opts.Seed)
			input.Seed = &seed
		}

		runID, err := r.store.SaveMatchRun(ctx, input)
		if err != nil {
			return nil, err
		}
		out.RunID = runID.String()
		r.invalidateLatest(ctx, assignmentID)
		r.emit(opts, StepPersist, "saved match run "+out.RunID, nil)
	}

	r.logger.Info("matched assignment",
		zap.String("assignment_id", assignmentID.String()),
		zap.Int("candidates", len(consultants)),
		zap.Int("results", len(out.Results)),
		zap.String("run_id", out.RunID),
	)
	return out, nil
}

// LatestMatches returns the most recent persisted ranking for an assignment,
// or nil when it was never matched.
func (r *Runner) LatestMatches(ctx context.Context, assignmentID uuid.UUID) (*types.MatchResults, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}

	key := latestKey(assignmentID)
	if r.cache != nil {
		var cached types.MatchResults
		ok, err := r.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			r.logger.Debug("latest matches cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return &cached, nil
		}
	}

	run, rows, err := r.store.ListMatchResults(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	out := &types.MatchResults{
		AssignmentID: assignmentID.String(),
		RunID:        run.ID.String(),
		Results:      records.FromMatchResultRows(rows),
	}
	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, key, out, LatestResultsTTL); err != nil {
			r.logger.Debug("latest matches cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// ListAssignments returns the most recently created stored assignments
func (r *Runner) ListAssignments(ctx context.Context, limit int) ([]types.Assignment, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	rows, err := r.store.ListAssignments(ctx, limit)
	if err != nil {
		return nil, err
	}
	assignments := make([]types.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, records.FromAssignmentRow(row))
	}
	return assignments, nil
}

func (r *Runner) invalidateLatest(ctx context.Context, assignmentID uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, latestKey(assignmentID)); err != nil {
		r.logger.Warn("failed to invalidate cached matches",
			zap.String("assignment_id", assignmentID.String()),
			zap.Error(err),
		)
	}
}

func latestKey(assignmentID uuid.UUID) string {
	return cache.Key("matches", "latest", assignmentID.String())
}

func countLetters(results []types.MatchResult) int {
	n := 0
	for _, r := range results {
		if r.Letter != "" {
			n++
		}
	}
	return n
}
