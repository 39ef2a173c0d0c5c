// Package matching scores consultants against a client assignment and ranks them.
package matching

import (
	"math"
	"strings"

	"github.com/jonathan/consultant-match/internal/types"
)

// Scoring constants
const (
	noSkillsBaseline      = 85.0
	maxExperienceBonus    = 15.0
	maxSkillDepthBonus    = 10.0
	skillDepthPerSkill    = 2.0
	culturalBaseline      = 75.0
	communicationBonus    = 15.0
	valuesAlignmentWeight = 20.0
	teamPresenceBonus     = 10.0
	leadershipAlignment   = 10.0
	leadershipGapPenalty  = 3.0

	// total = round(0.6*technical + 0.4*cultural), kept in tenths for integer arithmetic
	technicalWeightTenths = 6
	culturalWeightTenths  = 4
)

// computeTechnicalFit scores skill coverage plus experience and breadth bonuses.
// Returns the score (0-100) and the required skills that matched.
func computeTechnicalFit(m ItemMatcher, required, skills []string, years int) (int, []string) {
	matched := matchedItems(m, required, skills)

	base := noSkillsBaseline
	if len(required) > 0 {
		base = float64(len(matched)) / float64(len(required)) * 100
	}

	experienceBonus := math.Min(maxExperienceBonus, float64(years))

	extra := max(0, len(skills)-len(required))
	depthBonus := math.Min(maxSkillDepthBonus, float64(extra)*skillDepthPerSkill)

	return clampScore(roundHalfUp(base + experienceBonus + depthBonus)), matched
}

// computeCulturalFit scores communication, values, team and leadership alignment.
// Returns the score (0-100) and the required values that matched.
func computeCulturalFit(m ItemMatcher, assignment *types.Assignment, requiredValues []string, consultant *types.Consultant, values []string) (int, []string) {
	score := culturalBaseline

	desired := strings.TrimSpace(assignment.DesiredCommunicationStyle)
	if desired != "" && strings.EqualFold(desired, strings.TrimSpace(consultant.CommunicationStyle)) {
		score += communicationBonus
	}

	matched := matchedItems(m, requiredValues, values)
	if len(requiredValues) > 0 {
		score += float64(len(matched)) / float64(len(requiredValues)) * valuesAlignmentWeight
	}

	// Presence only; the texts are not compared
	if strings.TrimSpace(assignment.TeamCulture) != "" && strings.TrimSpace(consultant.TeamFit) != "" {
		score += teamPresenceBonus
	}

	gap := math.Abs(float64(assignment.Leadership() - consultant.LeadershipLevel()))
	score += math.Max(0, leadershipAlignment-leadershipGapPenalty*gap)

	return clampScore(roundHalfUp(score)), matched
}

// computeTotalScore blends technical and cultural fit 60/40, rounding half up.
func computeTotalScore(technical, cultural int) int {
	return clampScore((technicalWeightTenths*technical + culturalWeightTenths*cultural + 5) / 10)
}

// computeSuccessProbability adds jitter to the total and caps it.
func computeSuccessProbability(total int, jitter float64) int {
	return min(types.MaxSuccessProbability, total+int(math.Floor(jitter)))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampScore(v int) int {
	return max(0, min(100, v))
}
