package models

import "time"

type PeriodInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type CandidateGroups struct {
	Osis []CandidateResponse `json:"osis"`
	Mpk  []CandidateResponse `json:"mpk"`
}

type UserVoteStatus struct {
	HasVotedOsis bool `json:"hasVotedOsis"`
	HasVotedMpk  bool `json:"hasVotedMpk"`
}

type VotingStatusResponse struct {
	IsActive   bool             `json:"isActive"`
	Message    string           `json:"message,omitempty"`
	Periode    *PeriodInfo      `json:"periode,omitempty"`
	Candidates *CandidateGroups `json:"candidates,omitempty"`
	UserStatus *UserVoteStatus  `json:"userStatus,omitempty"`
}

type CandidateResult struct {
	CandidateID   string  `json:"candidateId"`
	CandidateName string  `json:"candidateName"`
	Type          string  `json:"type"`
	VoteCount     int     `json:"voteCount"`
	Percentage    float64 `json:"percentage"`
}

type QuickCountResponse struct {
	TotalVoters int               `json:"totalVoters"`
	VotedOsis   int               `json:"votedOsis"`
	VotedMpk    int               `json:"votedMpk"`
	OsisResults []CandidateResult `json:"osisResults"`
	MpkResults  []CandidateResult `json:"mpkResults"`
}

type DashboardStatsResponse struct {
	TotalUsers        int     `json:"totalUsers"`
	TotalVoters       int     `json:"totalVoters"`
	TotalCandidates   int     `json:"totalCandidates"`
	TotalPeriodes     int     `json:"totalPeriodes"`
	VotedOsis         int     `json:"votedOsis"`
	VotedMpk          int     `json:"votedMpk"`
	ParticipationRate float64 `json:"participationRate"`
}
