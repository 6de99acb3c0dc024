package domain

// RubricScores is the 5-dimension, 100-point rubric for a finished session,
// plus the legacy SPIN-shaped fields older clients still read.
type RubricScores struct {
	Exploration      int `json:"exploration"`
	Implication      int `json:"implication"`
	ValueProposition int `json:"value_proposition"`
	CustomerResponse int `json:"customer_response"`
	Advancement      int `json:"advancement"`
	Total            int `json:"total"`

	// Legacy fields derived from the five dimensions.
	Situation         int `json:"situation"`
	Problem           int `json:"problem"`
	ImplicationLegacy int `json:"implication_legacy"`
	Need              int `json:"need"`
}

// DimensionDetail is the per-dimension commentary the rubric collaborator
// returns alongside the numeric score.
type DimensionDetail struct {
	Score      int      `json:"score"`
	Comments   string   `json:"comments"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Report is the one-shot scoring record of a finished session.
type Report struct {
	ID        ReportID
	SessionID SessionID

	Scores      RubricScores
	Feedback    string
	NextActions string
	Details     map[string]DimensionDetail

	CreatedAt Timestamp
}
