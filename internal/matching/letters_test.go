package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonathan/consultant-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAttachLetters(t *testing.T) {
	assignment := &types.Assignment{ID: "a1", Title: "Platform lead"}
	results := []types.MatchResult{
		{Consultant: &types.Consultant{ID: "c1", Name: "Ada"}, Scores: types.Scores{TotalMatchScore: 90}},
		{Consultant: &types.Consultant{ID: "c2", Name: "Grace"}, Scores: types.Scores{TotalMatchScore: 80}},
	}

	fn := func(_ context.Context, a *types.Assignment, c *types.Consultant, s types.Scores) (string, error) {
		return fmt.Sprintf("%s for %s (%d)", c.Name, a.Title, s.TotalMatchScore), nil
	}

	err := AttachLetters(context.Background(), assignment, results, fn, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada for Platform lead (90)", results[0].Letter)
	assert.Equal(t, "Grace for Platform lead (80)", results[1].Letter)
}

func TestAttachLetters_FailureKeepsResult(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	results := []types.MatchResult{
		{Consultant: &types.Consultant{ID: "ok"}},
		{Consultant: &types.Consultant{ID: "broken"}},
	}

	fn := func(_ context.Context, _ *types.Assignment, c *types.Consultant, _ types.Scores) (string, error) {
		if c.ID == "broken" {
			return "", errors.New("model unavailable")
		}
		return "letter", nil
	}

	err := AttachLetters(context.Background(), &types.Assignment{}, results, fn, zap.New(core))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "letter", results[0].Letter)
	assert.Empty(t, results[1].Letter)

	entries := observed.FilterMessage("letter generation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken", entries[0].ContextMap()["consultant_id"])
}

func TestAttachLetters_NilFuncIsNoop(t *testing.T) {
	results := []types.MatchResult{{Consultant: &types.Consultant{ID: "c1"}}}
	require.NoError(t, AttachLetters(context.Background(), nil, results, nil, nil))
	assert.Empty(t, results[0].Letter)
}

func TestAttachLetters_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	fn := func(context.Context, *types.Assignment, *types.Consultant, types.Scores) (string, error) {
		called = true
		return "letter", nil
	}

	err := AttachLetters(ctx, nil, []types.MatchResult{{}}, fn, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
