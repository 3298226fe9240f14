package domain

// MatchResult is one scored candidate-to-posting match. Computed on demand,
// request-scoped, never persisted.
type MatchResult struct {
	Posting       Posting  `json:"posting"`
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matchedSkills"`
	Reasons       []string `json:"reasons"`
}
