// Package types provides the canonical records shared by the scorer, the store and the API.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DefaultLeadershipLevel is assumed when an assignment or consultant has no leadership level.
const DefaultLeadershipLevel = 3

// Assignment is a client assignment that consultants are matched against.
// It is treated as immutable for the duration of a scoring call.
type Assignment struct {
	ID                        string   `json:"id,omitempty"`
	Title                     string   `json:"title,omitempty"`
	Company                   string   `json:"company,omitempty"`
	RequiredSkills            []string `json:"required_skills"`
	RequiredValues            []string `json:"required_values"`
	DesiredCommunicationStyle string   `json:"desired_communication_style,omitempty"`
	TeamCulture               string   `json:"team_culture,omitempty"`
	LeadershipLevel           *int     `json:"leadership_level,omitempty" validate:"omitempty,min=1,max=5"`
}

// Leadership returns the assignment leadership level, defaulting to DefaultLeadershipLevel.
func (a *Assignment) Leadership() int {
	if a == nil || a.LeadershipLevel == nil {
		return DefaultLeadershipLevel
	}
	return *a.LeadershipLevel
}
