package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps list queries that do not set a limit
const DefaultListLimit = 500

// AssignmentRow mirrors a row of the assignments table
type AssignmentRow struct {
	ID                        uuid.UUID `json:"id"`
	Title                     string    `json:"title"`
	Company                   string    `json:"company"`
	RequiredSkills            []string  `json:"required_skills"`
	RequiredValues            []string  `json:"required_values"`
	DesiredCommunicationStyle *string   `json:"desired_communication_style,omitempty"`
	TeamCulture               *string   `json:"team_culture,omitempty"`
	LeadershipLevel           *int      `json:"leadership_level,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
}

// ConsultantRow mirrors a row of the consultants table
type ConsultantRow struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Title              string    `json:"title"`
	Skills             []string  `json:"skills"`
	Values             []string  `json:"values"`
	CommunicationStyle *string   `json:"communication_style,omitempty"`
	TeamFit            *string   `json:"team_fit,omitempty"`
	ExperienceYears    *int      `json:"experience_years,omitempty"`
	Experience         *string   `json:"experience,omitempty"`
	Leadership         *int      `json:"leadership,omitempty"`
	Available          bool      `json:"available"`
	CreatedAt          time.Time `json:"created_at"`
}

// ConsultantFilters holds optional filters for listing consultants
type ConsultantFilters struct {
	// IncludeUnavailable lists consultants that are not currently available
	IncludeUnavailable bool
	Limit              int
	// Offset skips that many consultants in creation order
	Offset int
}

// MatchRun represents one persisted scoring pass for an assignment
type MatchRun struct {
	ID             uuid.UUID `json:"id"`
	AssignmentID   uuid.UUID `json:"assignment_id"`
	Seed           *int64    `json:"seed,omitempty"`
	CandidateCount int       `json:"candidate_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// MatchResultRow is one ranked consultant within a match run
type MatchResultRow struct {
	RunID              uuid.UUID `json:"run_id"`
	ConsultantID       uuid.UUID `json:"consultant_id"`
	ConsultantName     string    `json:"consultant_name,omitempty"`
	Rank               int       `json:"rank"`
	TechnicalFit       int       `json:"technical_fit"`
	CulturalFit        int       `json:"cultural_fit"`
	TotalMatchScore    int       `json:"total_match_score"`
	SuccessProbability int       `json:"success_probability"`
	MatchedSkills      []string  `json:"matched_skills"`
	MatchedValues      []string  `json:"matched_values"`
	Letter             *string   `json:"letter,omitempty"`
}

// MatchRunInput is everything needed to persist a match run
type MatchRunInput struct {
	AssignmentID   uuid.UUID
	Seed           *int64
	CandidateCount int
	Results        []MatchResultRow
}
