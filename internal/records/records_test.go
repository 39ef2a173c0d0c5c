package records

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/consultant-match/internal/db"
	"github.com/jonathan/consultant-match/internal/types"
)

func TestDecodeAssignment_CamelAndSnakeKeys(t *testing.T) {
	camel := map[string]any{
		"id":                        "a-1",
		"title":                     "Frontend lead",
		"requiredSkills":            []any{"React", "TypeScript"},
		"requiredValues":            []any{"Integrity"},
		"desiredCommunicationStyle": "Direct",
		"teamCulture":               "Remote-first",
		"leadershipLevel":           float64(4),
	}
	snake := map[string]any{
		"id":                          "a-1",
		"title":                       "Frontend lead",
		"required_skills":             []any{"React", "TypeScript"},
		"required_values":             []any{"Integrity"},
		"desired_communication_style": "Direct",
		"team_culture":                "Remote-first",
		"leadership_level":            "4",
	}

	for name, raw := range map[string]map[string]any{"camel": camel, "snake": snake} {
		t.Run(name, func(t *testing.T) {
			a, err := DecodeAssignment(raw)
			require.NoError(t, err)
			assert.Equal(t, "a-1", a.ID)
			assert.Equal(t, []string{"React", "TypeScript"}, a.RequiredSkills)
			assert.Equal(t, []string{"Integrity"}, a.RequiredValues)
			assert.Equal(t, "Direct", a.DesiredCommunicationStyle)
			assert.Equal(t, "Remote-first", a.TeamCulture)
			require.NotNil(t, a.LeadershipLevel)
			assert.Equal(t, 4, *a.LeadershipLevel)
		})
	}
}

func TestDecodeAssignment_MissingFieldsBecomeEmpty(t *testing.T) {
	a, err := DecodeAssignment(map[string]any{"title": "Anything"})
	require.NoError(t, err)
	assert.NotNil(t, a.RequiredSkills)
	assert.Empty(t, a.RequiredSkills)
	assert.NotNil(t, a.RequiredValues)
	assert.Empty(t, a.RequiredValues)
	assert.Nil(t, a.LeadershipLevel)
	assert.Equal(t, types.DefaultLeadershipLevel, a.Leadership())
}

func TestDecodeAssignment_CommaSeparatedList(t *testing.T) {
	a, err := DecodeAssignment(map[string]any{"required_skills": "Go, Kafka ,PostgreSQL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kafka", "PostgreSQL"}, a.RequiredSkills)
}

func TestDecodeAssignment_ListItemsKeptVerbatim(t *testing.T) {
	a, err := DecodeAssignment(map[string]any{
		"requiredSkills": []any{" React ", "  ", "TypeScript"},
		"requiredValues": []any{""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{" React ", "  ", "TypeScript"}, a.RequiredSkills)
	assert.Equal(t, []string{""}, a.RequiredValues)
}

func TestDecodeAssignment_CommaSeparatedBlankString(t *testing.T) {
	a, err := DecodeAssignment(map[string]any{"required_skills": " , "})
	require.NoError(t, err)
	assert.NotNil(t, a.RequiredSkills)
	assert.Empty(t, a.RequiredSkills)
}

func TestDecodeAssignment_SnakeKeyWinsOverCamel(t *testing.T) {
	a, err := DecodeAssignment(map[string]any{
		"requiredSkills":  []any{"Camel"},
		"required_skills": []any{"Snake"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Snake"}, a.RequiredSkills)
}

func TestDecodeConsultant_Experience(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		wantYears int
	}{
		{"numeric years", map[string]any{"experienceYears": float64(8)}, 8},
		{"numeric string years", map[string]any{"experience_years": "6"}, 6},
		{"free text", map[string]any{"experience": "7 years"}, 7},
		{"plus suffix", map[string]any{"experience": "5+"}, 5},
		{"numeric experience", map[string]any{"experience": float64(3)}, 3},
		{"explicit years win", map[string]any{"experience_years": float64(2), "experience": "10 years"}, 2},
		{"no digits", map[string]any{"experience": "senior"}, 0},
		{"absent", map[string]any{}, 0},
		{"huge number clamps", map[string]any{"experience_years": 1e300}, math.MaxInt32},
		{"huge string clamps", map[string]any{"experience_years": "99999999999"}, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeConsultant(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYears, c.Years())
		})
	}
}

func TestDecodeConsultant_Fields(t *testing.T) {
	c, err := DecodeConsultant(map[string]any{
		"id":                 "c-9",
		"name":               "Ada",
		"skills":             []any{"Go", 5, "  "},
		"values":             nil,
		"communicationStyle": " Direct ",
		"teamFit":            "Startup",
		"leadership":         "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-9", c.ID)
	assert.Equal(t, []string{"Go", "5", "  "}, c.Skills)
	assert.NotNil(t, c.Values)
	assert.Empty(t, c.Values)
	assert.Equal(t, "Direct", c.CommunicationStyle)
	assert.Equal(t, "Startup", c.TeamFit)
	assert.Equal(t, 4, c.LeadershipLevel())
}

func TestDecodeConsultantsJSON_KeepsIndexAlignment(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": "ok-1"}`),
		json.RawMessage(`{"skills": {"not": "a list"}}`),
		json.RawMessage(`{"id": "ok-2"}`),
	}

	consultants, errs := DecodeConsultantsJSON(items, nil)
	require.Len(t, consultants, 3)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "consultant 1")
	assert.Equal(t, "ok-1", consultants[0].ID)
	assert.Nil(t, consultants[1])
	assert.Equal(t, "ok-2", consultants[2].ID)
}

func TestDecodeConsultantsJSON_SkipsBadElements(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`null`),
		json.RawMessage(`5`),
		json.RawMessage(`{"id": "ok", "skills": ["Go"]}`),
		json.RawMessage(`"text"`),
	}

	consultants, errs := DecodeConsultantsJSON(items, nil)
	require.Len(t, consultants, 4)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "consultant 0")
	assert.Contains(t, errs[1].Error(), "consultant 1")
	assert.Contains(t, errs[2].Error(), "consultant 3")
	assert.Nil(t, consultants[0])
	assert.Nil(t, consultants[1])
	require.NotNil(t, consultants[2])
	assert.Equal(t, []string{"Go"}, consultants[2].Skills)
	assert.Nil(t, consultants[3])
}

func TestDecodeConsultantsJSON_CheckRejects(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": "bad"}`),
		json.RawMessage(`{"id": "good"}`),
	}
	rejected := errors.New("rejected")
	check := func(item []byte) error {
		if string(item) == `{"id": "bad"}` {
			return rejected
		}
		return nil
	}

	consultants, errs := DecodeConsultantsJSON(items, check)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], rejected)
	assert.Nil(t, consultants[0])
	assert.Equal(t, "good", consultants[1].ID)
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int
		wantOK bool
	}{
		{"int", 4, 4, true},
		{"int64", int64(7), 7, true},
		{"float truncates", 4.9, 4, true},
		{"float above range", 1e300, math.MaxInt32, true},
		{"float below range", -1e300, math.MinInt32, true},
		{"int64 above range", int64(math.MaxInt64), math.MaxInt32, true},
		{"NaN", math.NaN(), 0, false},
		{"infinity", math.Inf(1), 0, false},
		{"numeric string", " 12 ", 12, true},
		{"long numeric string", "-99999999999", math.MinInt32, true},
		{"free text", "about 12 yrs", 12, true},
		{"text", "lots", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toInt(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAssignment_HugeLeadershipClamps(t *testing.T) {
	a, err := DecodeAssignment(map[string]any{"leadership_level": 1e19})
	require.NoError(t, err)
	require.NotNil(t, a.LeadershipLevel)
	assert.Equal(t, math.MaxInt32, *a.LeadershipLevel)
	assert.Error(t, a.Validate())
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"requiredSkills":            "required_skills",
		"desiredCommunicationStyle": "desired_communication_style",
		"team_fit":                  "team_fit",
		"ID":                        "id",
		"id":                        "id",
		"level2Value":               "level2_value",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestFromAssignmentRow(t *testing.T) {
	id := uuid.New()
	a := FromAssignmentRow(db.AssignmentRow{
		ID:                        id,
		Title:                     "Data lead",
		RequiredSkills:            []string{"SQL"},
		DesiredCommunicationStyle: strPtr("Async"),
		LeadershipLevel:           intPtr(5),
	})

	assert.Equal(t, id.String(), a.ID)
	assert.Equal(t, []string{"SQL"}, a.RequiredSkills)
	assert.Equal(t, []string{}, a.RequiredValues)
	assert.Equal(t, "Async", a.DesiredCommunicationStyle)
	assert.Empty(t, a.TeamCulture)
	assert.Equal(t, 5, a.Leadership())
}

func TestToAssignmentRow(t *testing.T) {
	level := 4
	assignment := types.Assignment{
		ID:              "ignored",
		Title:           "Platform lead",
		RequiredSkills:  []string{" Go ", "Kafka"},
		TeamCulture:     "Remote-first",
		LeadershipLevel: &level,
	}

	row := ToAssignmentRow(assignment)
	assert.Equal(t, uuid.Nil, row.ID)
	assert.Equal(t, "Platform lead", row.Title)
	assert.Equal(t, []string{" Go ", "Kafka"}, row.RequiredSkills)
	assert.Equal(t, []string{}, row.RequiredValues)
	assert.Nil(t, row.DesiredCommunicationStyle)
	require.NotNil(t, row.TeamCulture)
	assert.Equal(t, "Remote-first", *row.TeamCulture)
	require.NotNil(t, row.LeadershipLevel)
	assert.Equal(t, 4, *row.LeadershipLevel)

	level = 1
	assert.Equal(t, 4, *row.LeadershipLevel)
}

func TestToConsultantRow(t *testing.T) {
	row := ToConsultantRow(types.Consultant{
		Name:       "Grace",
		Skills:     []string{"COBOL"},
		Experience: "12 years",
	})

	assert.True(t, row.Available)
	assert.Equal(t, []string{"COBOL"}, row.Skills)
	assert.Equal(t, []string{}, row.Values)
	assert.Nil(t, row.ExperienceYears)
	assert.Nil(t, row.Leadership)
	require.NotNil(t, row.Experience)
	assert.Equal(t, "12 years", *row.Experience)

	// Stored rows map back to the same scoring inputs
	back := FromConsultantRow(row)
	assert.Equal(t, 12, back.Years())
	assert.Equal(t, types.DefaultLeadershipLevel, back.LeadershipLevel())
}

func TestFromConsultantRows(t *testing.T) {
	rows := []db.ConsultantRow{
		{ID: uuid.New(), Name: "Ada", Skills: []string{"Go"}, ExperienceYears: intPtr(9), Leadership: intPtr(2)},
		{ID: uuid.New(), Name: "Grace", Experience: strPtr("12 years")},
	}

	consultants := FromConsultantRows(rows)
	require.Len(t, consultants, 2)
	assert.Equal(t, rows[0].ID.String(), consultants[0].ID)
	assert.Equal(t, 9, consultants[0].Years())
	assert.Equal(t, 2, consultants[0].LeadershipLevel())
	assert.Equal(t, []string{}, consultants[1].Skills)
	assert.Equal(t, 12, consultants[1].Years())
	assert.Equal(t, types.DefaultLeadershipLevel, consultants[1].LeadershipLevel())
}

func TestMatchResultRowsRoundTrip(t *testing.T) {
	id := uuid.New()
	results := []types.MatchResult{
		{
			Consultant:         &types.Consultant{ID: id.String(), Name: "Ada"},
			Scores:             types.Scores{TechnicalFit: 90, CulturalFit: 80, TotalMatchScore: 86},
			MatchedSkills:      []string{"Go"},
			MatchedValues:      []string{},
			SuccessProbability: 91,
			Letter:             "Dear client",
		},
	}

	rows, err := ToMatchResultRows(results)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, id, rows[0].ConsultantID)
	require.NotNil(t, rows[0].Letter)

	back := FromMatchResultRows(rows)
	require.Len(t, back, 1)
	assert.Equal(t, results[0].Scores, back[0].Scores)
	assert.Equal(t, "Ada", back[0].Consultant.Name)
	assert.Equal(t, "Dear client", back[0].Letter)
	assert.Equal(t, 91, back[0].SuccessProbability)
}

func TestToMatchResultRows_Errors(t *testing.T) {
	_, err := ToMatchResultRows([]types.MatchResult{{}})
	assert.Error(t, err)

	_, err = ToMatchResultRows([]types.MatchResult{{Consultant: &types.Consultant{ID: "not-a-uuid"}}})
	assert.ErrorContains(t, err, "invalid consultant id")
}

func TestFromMatchResultRows_NilListsBecomeEmpty(t *testing.T) {
	results := FromMatchResultRows([]db.MatchResultRow{{ConsultantID: uuid.New()}})
	require.Len(t, results, 1)
	assert.Equal(t, []string{}, results[0].MatchedSkills)
	assert.Equal(t, []string{}, results[0].MatchedValues)
	assert.Empty(t, results[0].Letter)
}
