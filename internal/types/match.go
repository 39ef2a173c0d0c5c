package types

// MaxMatchResults is the number of ranked candidates returned per scoring call.
const MaxMatchResults = 10

// MaxSuccessProbability caps MatchResult.SuccessProbability.
const MaxSuccessProbability = 95

// Scores holds the three fit scores of a consultant against an assignment.
type Scores struct {
	TechnicalFit    int `json:"technical_fit"`
	CulturalFit     int `json:"cultural_fit"`
	TotalMatchScore int `json:"total_match_score"`
}

// MatchResult pairs a consultant with its scores against one assignment.
type MatchResult struct {
	Consultant *Consultant `json:"consultant"`
	Scores
	MatchedSkills      []string `json:"matched_skills"`
	MatchedValues      []string `json:"matched_values"`
	SuccessProbability int      `json:"success_probability"`
	// Letter is the optional generated match letter
	Letter string `json:"letter,omitempty"`
}

// MatchResults is the ranked output for one assignment.
type MatchResults struct {
	AssignmentID string        `json:"assignment_id,omitempty"`
	RunID        string        `json:"run_id,omitempty"`
	Results      []MatchResult `json:"results"`
}
