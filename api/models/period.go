package models

import (
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
)

type PeriodCreateRequest struct {
	Name string `json:"name"`
}

// PeriodUpdateRequest uses pointers so a PUT can change just the fields it
// sends; setting isActive=true triggers the deactivate-all-then-activate-one
// path.
type PeriodUpdateRequest struct {
	Name      *string    `json:"name"`
	IsActive  *bool      `json:"isActive"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type PeriodResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	IsActive       bool       `json:"isActive"`
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	CreatedAt      time.Time  `json:"createdAt"`
	CandidateCount int        `json:"candidateCount"`
	BallotCount    int        `json:"ballotCount"`
}

func TransformPeriodFromStorage(p *storage.Period, candidateCount, ballotCount int) PeriodResponse {
	return PeriodResponse{
		ID:             p.ID,
		Name:           p.Name,
		IsActive:       p.IsActive,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		CreatedAt:      p.CreatedAt,
		CandidateCount: candidateCount,
		BallotCount:    ballotCount,
	}
}
