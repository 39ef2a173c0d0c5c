package matching

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/consultant-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestScorer(logger *zap.Logger) *Scorer {
	return NewScorer(Config{Jitter: FixedJitter(0)}, logger)
}

func TestScoreMatches_WorkedExample(t *testing.T) {
	assignment := &types.Assignment{RequiredSkills: []string{"React", "TypeScript"}}
	consultant := &types.Consultant{ID: "c1", Skills: []string{"React", "Node.js"}, ExperienceYears: 5}

	results, err := newTestScorer(nil).ScoreMatches(context.Background(), assignment, []*types.Consultant{consultant})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Same(t, consultant, result.Consultant)
	assert.Equal(t, 55, result.TechnicalFit)
	assert.Equal(t, 85, result.CulturalFit)
	assert.Equal(t, 67, result.TotalMatchScore)
	assert.Equal(t, []string{"React"}, result.MatchedSkills)
	assert.Empty(t, result.MatchedValues)
	assert.Equal(t, 67, result.SuccessProbability)
}

func TestScoreMatches_BlankAndPaddedRequiredItems(t *testing.T) {
	assignment := &types.Assignment{
		RequiredSkills: []string{" React ", "  "},
		RequiredValues: []string{"", " Integrity"},
	}
	consultant := &types.Consultant{ID: "c1", Skills: []string{"React"}, Values: []string{"integrity", " "}}

	results, err := newTestScorer(nil).ScoreMatches(context.Background(), assignment, []*types.Consultant{consultant})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	// Blank entries count toward the required total but never match
	assert.Equal(t, 50, result.TechnicalFit)
	assert.Equal(t, []string{" React "}, result.MatchedSkills)
	assert.Subset(t, assignment.RequiredSkills, result.MatchedSkills)
	assert.Equal(t, []string{" Integrity"}, result.MatchedValues)
	assert.Subset(t, assignment.RequiredValues, result.MatchedValues)
	assert.Equal(t, 95, result.CulturalFit)
}

func TestScoreMatches_EmptyRequiredSkillsGivesBaseline(t *testing.T) {
	assignment := &types.Assignment{}
	consultants := []*types.Consultant{
		{ID: "a"},
		{ID: "b", Values: []string{"Craft"}},
	}

	results := NewScorer(Config{}, nil)
	got, err := results.ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, 85, r.TechnicalFit)
	}
}

func TestScoreMatches_ExperienceFromFreeText(t *testing.T) {
	assignment := &types.Assignment{RequiredSkills: []string{"Go", "Rust"}}
	consultant := &types.Consultant{Skills: []string{"Go"}, Experience: "12 years"}

	results, err := newTestScorer(nil).ScoreMatches(context.Background(), assignment, []*types.Consultant{consultant})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 62, results[0].TechnicalFit)
}

func TestScoreMatches_EmptyList(t *testing.T) {
	results, err := newTestScorer(nil).ScoreMatches(context.Background(), &types.Assignment{RequiredSkills: []string{"Go"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.Empty(t, ScoreMatches(&types.Assignment{}, []*types.Consultant{}))
}

func TestScoreMatches_NilAssignmentTreatedAsEmpty(t *testing.T) {
	results, err := newTestScorer(nil).ScoreMatches(context.Background(), nil, []*types.Consultant{{ID: "a"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 85, results[0].TechnicalFit)
	assert.Equal(t, 85, results[0].CulturalFit)
}

func TestScoreMatches_SortedAndTruncated(t *testing.T) {
	required := []string{"Go", "Kafka", "Postgres", "Docker"}
	assignment := &types.Assignment{RequiredSkills: required}

	consultants := make([]*types.Consultant, 0, 15)
	for i := range 15 {
		consultants = append(consultants, &types.Consultant{
			ID:     fmt.Sprintf("c%02d", i),
			Skills: required[:i%5],
		})
	}

	results, err := newTestScorer(nil).ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	require.Len(t, results, types.MaxMatchResults)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].TotalMatchScore, results[i].TotalMatchScore)
	}
	assert.Equal(t, []string{"Go", "Kafka", "Postgres", "Docker"}, results[0].MatchedSkills)
}

func TestScoreMatches_TiesKeepInputOrder(t *testing.T) {
	consultants := make([]*types.Consultant, 0, 8)
	for i := range 8 {
		consultants = append(consultants, &types.Consultant{ID: fmt.Sprintf("c%d", i), Skills: []string{"Go"}})
	}

	results, err := NewScorer(Config{Jitter: FixedJitter(0), Workers: 4}, nil).
		ScoreMatches(context.Background(), &types.Assignment{RequiredSkills: []string{"Go"}}, consultants)
	require.NoError(t, err)
	require.Len(t, results, 8)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("c%d", i), r.Consultant.ID)
	}
}

func TestScoreMatches_Invariants(t *testing.T) {
	level := 4
	assignment := &types.Assignment{
		RequiredSkills:            []string{"React", "TypeScript", "GraphQL", "AWS"},
		RequiredValues:            []string{"Transparency", "Ownership"},
		DesiredCommunicationStyle: "Collaborative",
		TeamCulture:               "Product-driven",
		LeadershipLevel:           &level,
	}
	consultants := []*types.Consultant{
		{ID: "1", Skills: []string{"React", "Redux"}, ExperienceYears: 3, Leadership: 2},
		{ID: "2", Skills: []string{"TypeScript", "GraphQL", "AWS Lambda", "React Native", "Jest"}, ExperienceYears: 25,
			Values: []string{"ownership", "transparency"}, CommunicationStyle: "collaborative", TeamFit: "any", Leadership: 4},
		{ID: "3", Skills: nil, Values: nil, ExperienceYears: -2, Leadership: 9},
		{ID: "4", Skills: []string{"", "  "}, Values: []string{"Ownership culture"}},
	}

	results, err := NewScorer(Config{Jitter: SeededJitter{Seed: 42}}, nil).
		ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	require.Len(t, results, len(consultants))

	for _, r := range results {
		for _, score := range []int{r.TechnicalFit, r.CulturalFit, r.TotalMatchScore} {
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
		assert.Equal(t, computeTotalScore(r.TechnicalFit, r.CulturalFit), r.TotalMatchScore)
		assert.Subset(t, assignment.RequiredSkills, r.MatchedSkills)
		assert.Subset(t, assignment.RequiredValues, r.MatchedValues)
		assert.GreaterOrEqual(t, r.SuccessProbability, min(r.TotalMatchScore, types.MaxSuccessProbability))
		assert.LessOrEqual(t, r.SuccessProbability, types.MaxSuccessProbability)
		assert.LessOrEqual(t, r.SuccessProbability, r.TotalMatchScore+9)
	}

	assert.Equal(t, "2", results[0].Consultant.ID)
	assert.Equal(t, 100, results[0].TechnicalFit)
	assert.Equal(t, 100, results[0].CulturalFit)
}

func TestScoreMatches_SeededJitterIsReproducible(t *testing.T) {
	assignment := &types.Assignment{RequiredSkills: []string{"Go"}}
	consultants := make([]*types.Consultant, 0, 10)
	for i := range 10 {
		consultants = append(consultants, &types.Consultant{ID: fmt.Sprintf("c%d", i), Skills: []string{"Go"}, ExperienceYears: i})
	}

	first, err := NewScorer(Config{Jitter: SeededJitter{Seed: 7}}, nil).ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	second, err := NewScorer(Config{Jitter: SeededJitter{Seed: 7}, Workers: 1}, nil).ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Consultant.ID, second[i].Consultant.ID)
		assert.Equal(t, first[i].SuccessProbability, second[i].SuccessProbability)
	}
}

func TestScoreMatches_SkipsNilConsultant(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	scorer := newTestScorer(zap.New(core))

	consultants := []*types.Consultant{{ID: "a"}, nil, {ID: "b"}}
	results, err := scorer.ScoreMatches(context.Background(), &types.Assignment{}, consultants)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Consultant.ID)
	assert.Equal(t, "b", results[1].Consultant.ID)

	entries := observed.FilterMessage("skipping consultant").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["index"])
}

type panickingMatcher struct{}

func (panickingMatcher) Matches(required, candidate string) bool {
	if candidate == "boom" {
		panic("unexpected record shape")
	}
	return strings.EqualFold(required, candidate)
}

func TestScoreMatches_PanicInOneConsultantDoesNotAbortBatch(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	scorer := NewScorer(Config{Skills: panickingMatcher{}, Jitter: FixedJitter(0)}, zap.New(core))

	consultants := []*types.Consultant{
		{ID: "ok-1", Skills: []string{"Go"}},
		{ID: "bad", Skills: []string{"boom"}},
		{ID: "ok-2", Skills: []string{"Rust"}},
	}

	results, err := scorer.ScoreMatches(context.Background(), &types.Assignment{RequiredSkills: []string{"Go"}}, consultants)
	require.NoError(t, err)
	require.Len(t, results, 2)

	ids := []string{results[0].Consultant.ID, results[1].Consultant.ID}
	assert.ElementsMatch(t, []string{"ok-1", "ok-2"}, ids)

	entries := observed.FilterMessage("skipping consultant").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad", entries[0].ContextMap()["consultant_id"])
}

func TestScoreMatches_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScorer(nil).ScoreMatches(ctx, &types.Assignment{}, []*types.Consultant{{ID: "a"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreMatches_SynonymMatcherOptIn(t *testing.T) {
	assignment := &types.Assignment{RequiredSkills: []string{"Kubernetes"}}
	consultants := []*types.Consultant{{Skills: []string{"k8s"}}}

	lenient, err := newTestScorer(nil).ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	assert.Empty(t, lenient[0].MatchedSkills)

	synonyms, err := NewScorer(Config{Skills: SynonymMatcher{}, Jitter: FixedJitter(0)}, nil).
		ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes"}, synonyms[0].MatchedSkills)
}

func TestScorer_WithJitter(t *testing.T) {
	base := NewScorer(Config{Jitter: FixedJitter(0)}, nil)
	shifted := base.WithJitter(FixedJitter(5))

	assignment := &types.Assignment{RequiredSkills: []string{"Go"}}
	consultants := []*types.Consultant{{Skills: []string{"Rust"}}}

	a, err := base.ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)
	b, err := shifted.ScoreMatches(context.Background(), assignment, consultants)
	require.NoError(t, err)

	assert.Equal(t, a[0].TotalMatchScore, b[0].TotalMatchScore)
	assert.Equal(t, a[0].SuccessProbability+5, b[0].SuccessProbability)
	assert.Same(t, base, base.WithJitter(nil))
}
