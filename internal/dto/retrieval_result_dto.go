package dto

// RetrievalResult is one ranked hit from hybrid search. ContextChunk carries
// the candidate's masked profile text so downstream consumers never see raw
// input. Rationale stays empty until explanation is requested.
type RetrievalResult struct {
	CandidateID   string   `json:"candidate_id"`
	MatchedSkills []string `json:"matched_skills"`
	TotalRequired int      `json:"total_required"`
	Coverage      float64  `json:"coverage"`
	Similarity    float64  `json:"similarity"`
	Score         float64  `json:"score"`
	ContextChunk  string   `json:"context_chunk"`
	Rationale     string   `json:"rationale,omitempty"`
}
