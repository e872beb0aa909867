package storage

import (
	"fmt"
	"time"
)

type Period struct {
	ID        string     `dynamodbav:"PK" json:"id"`
	Name      string     `dynamodbav:"Name" json:"name"`
	IsActive  bool       `dynamodbav:"IsActive" json:"isActive"`
	StartTime *time.Time `dynamodbav:"StartTime,omitempty" json:"startTime"`
	EndTime   *time.Time `dynamodbav:"EndTime,omitempty" json:"endTime"`
	CreatedAt time.Time  `dynamodbav:"CreatedAt" json:"createdAt"`
}

// Candidate is a chairman + vice-chairman ticket running in one period
// under one election type (OSIS or MPK).
type Candidate struct {
	ID               string    `dynamodbav:"PK" json:"id"`
	ChairmanName     string    `dynamodbav:"ChairmanName" json:"chairmanName"`
	ViceChairmanName string    `dynamodbav:"ViceChairmanName" json:"viceChairmanName"`
	Photo            string    `dynamodbav:"Photo,omitempty" json:"photo,omitempty"`
	Visi             string    `dynamodbav:"Visi,omitempty" json:"visi,omitempty"`
	Misi             string    `dynamodbav:"Misi,omitempty" json:"misi,omitempty"`
	Type             string    `dynamodbav:"Type" json:"type"`
	OrderNumber      int       `dynamodbav:"OrderNumber" json:"orderNumber"`
	PeriodID         string    `dynamodbav:"PeriodID" json:"periodeId"`
	CreatedAt        time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
}

type User struct {
	ID           string    `dynamodbav:"PK" json:"id"`
	Username     string    `dynamodbav:"Username" json:"username"`
	Password     string    `dynamodbav:"Password" json:"-"`
	FullName     string    `dynamodbav:"FullName" json:"fullName"`
	Role         string    `dynamodbav:"Role" json:"role"`
	HasVotedOsis bool      `dynamodbav:"HasVotedOsis" json:"hasVotedOsis"`
	HasVotedMpk  bool      `dynamodbav:"HasVotedMpk" json:"hasVotedMpk"`
	CreatedAt    time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
}

// Ballot is one immutable cast vote. The key pair (PK=voter, SK=period+type)
// is what makes "one ballot per voter per type per period" a storage-level
// constraint instead of an application check.
type Ballot struct {
	VoterID     string    `dynamodbav:"PK" json:"voterId"`
	SortKey     string    `dynamodbav:"SK" json:"-"`
	ID          string    `dynamodbav:"ID" json:"id"`
	CandidateID string    `dynamodbav:"CandidateID" json:"candidateId"`
	PeriodID    string    `dynamodbav:"PeriodID" json:"periodeId"`
	Type        string    `dynamodbav:"Type" json:"type"`
	CastAt      time.Time `dynamodbav:"CastAt" json:"castAt"`
}

func BallotSortKey(periodID, voteType string) string {
	return fmt.Sprintf("PERIOD#%s#TYPE#%s", periodID, voteType)
}
