package models

type SubmitVoteRequest struct {
	CandidateID string `json:"candidateId"`
	Type        string `json:"type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
