package types

import "github.com/jonathan/consultant-match/internal/parsing"

// Consultant is a candidate profile scored against an Assignment.
type Consultant struct {
	ID                 string   `json:"id,omitempty"`
	Name               string   `json:"name,omitempty"`
	Title              string   `json:"title,omitempty"`
	Skills             []string `json:"skills"`
	Values             []string `json:"values"`
	CommunicationStyle string   `json:"communication_style,omitempty"`
	TeamFit            string   `json:"team_fit,omitempty"`
	ExperienceYears    int      `json:"experience_years,omitempty"`
	// Experience is free text ("7 years") used when ExperienceYears is unset.
	Experience string `json:"experience,omitempty"`
	Leadership int    `json:"leadership,omitempty"`
}

// Years returns the consultant's experience in whole years.
func (c *Consultant) Years() int {
	if c.ExperienceYears != 0 {
		return c.ExperienceYears
	}
	return parsing.ExperienceYears(c.Experience)
}

// LeadershipLevel returns the consultant leadership, defaulting to DefaultLeadershipLevel when unset.
func (c *Consultant) LeadershipLevel() int {
	if c.Leadership <= 0 {
		return DefaultLeadershipLevel
	}
	return c.Leadership
}
