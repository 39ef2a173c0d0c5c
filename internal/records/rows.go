package records

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/consultant-match/internal/db"
	"github.com/jonathan/consultant-match/internal/types"
)

// FromAssignmentRow maps a stored assignment onto the canonical record
func FromAssignmentRow(row db.AssignmentRow) types.Assignment {
	return types.Assignment{
		ID:                        row.ID.String(),
		Title:                     row.Title,
		Company:                   row.Company,
		RequiredSkills:            nonNil(row.RequiredSkills),
		RequiredValues:            nonNil(row.RequiredValues),
		DesiredCommunicationStyle: deref(row.DesiredCommunicationStyle),
		TeamCulture:               deref(row.TeamCulture),
		LeadershipLevel:           row.LeadershipLevel,
	}
}

// FromConsultantRow maps a stored consultant onto the canonical record
func FromConsultantRow(row db.ConsultantRow) types.Consultant {
	c := types.Consultant{
		ID:                 row.ID.String(),
		Name:               row.Name,
		Title:              row.Title,
		Skills:             nonNil(row.Skills),
		Values:             nonNil(row.Values),
		CommunicationStyle: deref(row.CommunicationStyle),
		TeamFit:            deref(row.TeamFit),
		Experience:         deref(row.Experience),
	}
	if row.ExperienceYears != nil {
		c.ExperienceYears = *row.ExperienceYears
	}
	if row.Leadership != nil {
		c.Leadership = *row.Leadership
	}
	return c
}

// ToAssignmentRow maps an assignment onto a row for insertion. The id and
// creation time are assigned by the database.
func ToAssignmentRow(a types.Assignment) db.AssignmentRow {
	row := db.AssignmentRow{
		Title:                     a.Title,
		Company:                   a.Company,
		RequiredSkills:            nonNil(a.RequiredSkills),
		RequiredValues:            nonNil(a.RequiredValues),
		DesiredCommunicationStyle: optional(a.DesiredCommunicationStyle),
		TeamCulture:               optional(a.TeamCulture),
	}
	if a.LeadershipLevel != nil {
		level := *a.LeadershipLevel
		row.LeadershipLevel = &level
	}
	return row
}

// ToConsultantRow maps a consultant onto a row for insertion. New
// consultants are available.
func ToConsultantRow(c types.Consultant) db.ConsultantRow {
	row := db.ConsultantRow{
		Name:               c.Name,
		Title:              c.Title,
		Skills:             nonNil(c.Skills),
		Values:             nonNil(c.Values),
		CommunicationStyle: optional(c.CommunicationStyle),
		TeamFit:            optional(c.TeamFit),
		Experience:         optional(c.Experience),
		Available:          true,
	}
	if c.ExperienceYears != 0 {
		years := c.ExperienceYears
		row.ExperienceYears = &years
	}
	if c.Leadership > 0 {
		level := c.Leadership
		row.Leadership = &level
	}
	return row
}

// FromConsultantRows maps stored consultants, preserving order
func FromConsultantRows(rows []db.ConsultantRow) []*types.Consultant {
	consultants := make([]*types.Consultant, 0, len(rows))
	for _, row := range rows {
		c := FromConsultantRow(row)
		consultants = append(consultants, &c)
	}
	return consultants
}

// ToMatchResultRows converts ranked results into rows for persistence.
// Rank starts at 1. Every consultant must carry a UUID id.
func ToMatchResultRows(results []types.MatchResult) ([]db.MatchResultRow, error) {
	rows := make([]db.MatchResultRow, 0, len(results))
	for i, r := range results {
		if r.Consultant == nil {
			return nil, fmt.Errorf("result %d has no consultant", i)
		}
		id, err := uuid.Parse(r.Consultant.ID)
		if err != nil {
			return nil, fmt.Errorf("result %d: invalid consultant id %q: %w", i, r.Consultant.ID, err)
		}

		row := db.MatchResultRow{
			ConsultantID:       id,
			ConsultantName:     r.Consultant.Name,
			Rank:               i + 1,
			TechnicalFit:       r.TechnicalFit,
			CulturalFit:        r.CulturalFit,
			TotalMatchScore:    r.TotalMatchScore,
			SuccessProbability: r.SuccessProbability,
			MatchedSkills:      r.MatchedSkills,
			MatchedValues:      r.MatchedValues,
		}
		if r.Letter != "" {
			letter := r.Letter
			row.Letter = &letter
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FromMatchResultRows rebuilds ranked results from persisted rows. Consultants
// carry only their id and name.
func FromMatchResultRows(rows []db.MatchResultRow) []types.MatchResult {
	results := make([]types.MatchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.MatchResult{
			Consultant: &types.Consultant{
				ID:   row.ConsultantID.String(),
				Name: row.ConsultantName,
			},
			Scores: types.Scores{
				TechnicalFit:    row.TechnicalFit,
				CulturalFit:     row.CulturalFit,
				TotalMatchScore: row.TotalMatchScore,
			},
			MatchedSkills:      nonNil(row.MatchedSkills),
			MatchedValues:      nonNil(row.MatchedValues),
			SuccessProbability: row.SuccessProbability,
			Letter:             deref(row.Letter),
		})
	}
	return results
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
