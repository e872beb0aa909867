package models

import (
	"fmt"

	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
)

type CandidateCreateRequest struct {
	ChairmanName     string `json:"chairmanName"`
	ViceChairmanName string `json:"viceChairmanName"`
	Photo            string `json:"photo"`
	Visi             string `json:"visi"`
	Misi             string `json:"misi"`
	Type             string `json:"type"`
	OrderNumber      int    `json:"orderNumber"`
	PeriodeID        string `json:"periodeId"`
}

type CandidateUpdateRequest struct {
	ChairmanName     string `json:"chairmanName"`
	ViceChairmanName string `json:"viceChairmanName"`
	Photo            string `json:"photo"`
	Visi             string `json:"visi"`
	Misi             string `json:"misi"`
	Type             string `json:"type"`
	OrderNumber      int    `json:"orderNumber"`
}

type CandidateResponse struct {
	ID               string `json:"id"`
	ChairmanName     string `json:"chairmanName"`
	ViceChairmanName string `json:"viceChairmanName"`
	Photo            string `json:"photo,omitempty"`
	Visi             string `json:"visi,omitempty"`
	Misi             string `json:"misi,omitempty"`
	Type             string `json:"type"`
	OrderNumber      int    `json:"orderNumber"`
	PeriodeID        string `json:"periodeId"`
	VoteCount        int    `json:"voteCount"`
}

func TransformCandidateFromStorage(c *storage.Candidate, voteCount int) CandidateResponse {
	return CandidateResponse{
		ID:               c.ID,
		ChairmanName:     c.ChairmanName,
		ViceChairmanName: c.ViceChairmanName,
		Photo:            c.Photo,
		Visi:             c.Visi,
		Misi:             c.Misi,
		Type:             c.Type,
		OrderNumber:      c.OrderNumber,
		PeriodeID:        c.PeriodID,
		VoteCount:        voteCount,
	}
}

// CandidateDisplayName is the ticket name shown in tallies.
func CandidateDisplayName(c *storage.Candidate) string {
	return fmt.Sprintf("%s & %s", c.ChairmanName, c.ViceChairmanName)
}
