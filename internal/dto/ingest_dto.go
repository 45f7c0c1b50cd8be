package dto

type IngestDocumentRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type IngestBatchRequest struct {
	Documents []IngestDocumentRequest `json:"documents"`
}

// IngestReport describes one successfully persisted document.
type IngestReport struct {
	CandidateID string   `json:"candidate_id"`
	Skills      []string `json:"skills"`
	Roles       []string `json:"roles"`
	MaskedSpans int      `json:"masked_spans"`
}

// BatchFailure records a single document that could not be ingested; the
// rest of the batch is unaffected.
type BatchFailure struct {
	Index       int    `json:"index"`
	CandidateID string `json:"candidate_id,omitempty"`
	Error       string `json:"error"`
}

type BatchReport struct {
	Succeeded []IngestReport `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}
