package matching

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/consultant-match/internal/logging"
	"github.com/jonathan/consultant-match/internal/types"
)

// maxConcurrentLetters bounds in-flight letter generations
const maxConcurrentLetters = 4

// LetterFunc produces a match letter for a scored consultant.
type LetterFunc func(ctx context.Context, assignment *types.Assignment, consultant *types.Consultant, scores types.Scores) (string, error)

// AttachLetters fills MatchResult.Letter for each result using fn.
// A failed letter is logged and left empty; the results are never dropped.
// Only a cancelled context is returned as an error.
func AttachLetters(ctx context.Context, assignment *types.Assignment, results []types.MatchResult, fn LetterFunc, logger *zap.Logger) error {
	if fn == nil || len(results) == 0 {
		return nil
	}
	logger = logging.OrNop(logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLetters)

	for i := range results {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			letter, err := fn(gCtx, assignment, results[i].Consultant, results[i].Scores)
			if err != nil {
				logger.Warn("letter generation failed",
					zap.String("consultant_id", consultantID(results[i].Consultant)),
					zap.Error(err),
				)
				return nil
			}

			results[i].Letter = letter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
