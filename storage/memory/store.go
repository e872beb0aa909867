// Package memory implements the storage interfaces on plain maps behind a
// single mutex. It backs the test suite and can stand in for DynamoDB when
// running without AWS credentials.
package memory

import (
	"context"
	"sync"

	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
)

type Store struct {
	mu         sync.Mutex
	periods    map[string]*storage.Period
	candidates map[string]*storage.Candidate
	users      map[string]*storage.User
	ballots    map[string]*storage.Ballot
}

func NewStore() *Store {
	return &Store{
		periods:    map[string]*storage.Period{},
		candidates: map[string]*storage.Candidate{},
		users:      map[string]*storage.User{},
		ballots:    map[string]*storage.Ballot{},
	}
}

func (s *Store) Periods() storage.PeriodStorage       { return &periodStore{s} }
func (s *Store) Candidates() storage.CandidateStorage { return &candidateStore{s} }
func (s *Store) Users() storage.UserStorage           { return &userStore{s} }
func (s *Store) Ballots() storage.BallotStorage       { return &ballotStore{s} }

func ballotKey(b *storage.Ballot) string {
	return b.VoterID + "|" + b.SortKey
}

// --- periods ---

type periodStore struct{ s *Store }

var _ storage.PeriodStorage = (*periodStore)(nil)

func (p *periodStore) Get(_ context.Context, id string) (*storage.Period, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	period, ok := p.s.periods[id]
	if !ok {
		return nil, nil
	}
	out := *period
	return &out, nil
}

func (p *periodStore) GetAll(_ context.Context) ([]*storage.Period, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	periods := make([]*storage.Period, 0, len(p.s.periods))
	for _, period := range p.s.periods {
		out := *period
		periods = append(periods, &out)
	}
	return periods, nil
}

func (p *periodStore) GetActive(_ context.Context) (*storage.Period, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, period := range p.s.periods {
		if period.IsActive {
			out := *period
			return &out, nil
		}
	}
	return nil, nil
}

func (p *periodStore) Create(_ context.Context, period *storage.Period) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, exists := p.s.periods[period.ID]; exists {
		return storage.ErrItemAlreadyExists
	}
	out := *period
	p.s.periods[period.ID] = &out
	return nil
}

func (p *periodStore) Update(_ context.Context, period *storage.Period) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := *period
	p.s.periods[period.ID] = &out
	return nil
}

func (p *periodStore) Activate(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, exists := p.s.periods[id]; !exists {
		return storage.ErrNotFound
	}
	for _, period := range p.s.periods {
		period.IsActive = period.ID == id
	}
	return nil
}

func (p *periodStore) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	delete(p.s.periods, id)
	return nil
}

// --- candidates ---

type candidateStore struct{ s *Store }

var _ storage.CandidateStorage = (*candidateStore)(nil)

func (c *candidateStore) Get(_ context.Context, id string) (*storage.Candidate, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	candidate, ok := c.s.candidates[id]
	if !ok {
		return nil, nil
	}
	out := *candidate
	return &out, nil
}

func (c *candidateStore) GetAll(_ context.Context) ([]*storage.Candidate, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	candidates := make([]*storage.Candidate, 0, len(c.s.candidates))
	for _, candidate := range c.s.candidates {
		out := *candidate
		candidates = append(candidates, &out)
	}
	return candidates, nil
}

func (c *candidateStore) GetByPeriod(_ context.Context, periodID string) ([]*storage.Candidate, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var candidates []*storage.Candidate
	for _, candidate := range c.s.candidates {
		if candidate.PeriodID == periodID {
			out := *candidate
			candidates = append(candidates, &out)
		}
	}
	return candidates, nil
}

func (c *candidateStore) Create(_ context.Context, candidate *storage.Candidate) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, exists := c.s.candidates[candidate.ID]; exists {
		return storage.ErrItemAlreadyExists
	}
	out := *candidate
	c.s.candidates[candidate.ID] = &out
	return nil
}

func (c *candidateStore) Update(_ context.Context, candidate *storage.Candidate) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := *candidate
	c.s.candidates[candidate.ID] = &out
	return nil
}

func (c *candidateStore) Delete(_ context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.candidates, id)
	return nil
}

// --- users ---

type userStore struct{ s *Store }

var _ storage.UserStorage = (*userStore)(nil)

func (u *userStore) Get(_ context.Context, id string) (*storage.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	out := *user
	return &out, nil
}

func (u *userStore) GetByUsername(_ context.Context, username string) (*storage.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, nil
}

func (u *userStore) GetAll(_ context.Context) ([]*storage.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	users := make([]*storage.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		out := *user
		users = append(users, &out)
	}
	return users, nil
}

func (u *userStore) Create(_ context.Context, user *storage.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, exists := u.s.users[user.ID]; exists {
		return storage.ErrItemAlreadyExists
	}
	out := *user
	u.s.users[user.ID] = &out
	return nil
}

func (u *userStore) Update(_ context.Context, user *storage.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	out := *user
	u.s.users[user.ID] = &out
	return nil
}

func (u *userStore) Delete(_ context.Context, id string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	delete(u.s.users, id)
	return nil
}

func (u *userStore) ResetAllFlags(_ context.Context) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		user.HasVotedOsis = false
		user.HasVotedMpk = false
	}
	return nil
}

// --- ballots ---

type ballotStore struct{ s *Store }

var _ storage.BallotStorage = (*ballotStore)(nil)

func (b *ballotStore) GetAll(_ context.Context) ([]*storage.Ballot, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	ballots := make([]*storage.Ballot, 0, len(b.s.ballots))
	for _, ballot := range b.s.ballots {
		out := *ballot
		ballots = append(ballots, &out)
	}
	return ballots, nil
}

func (b *ballotStore) GetByVoter(_ context.Context, voterID string) ([]*storage.Ballot, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var ballots []*storage.Ballot
	for _, ballot := range b.s.ballots {
		if ballot.VoterID == voterID {
			out := *ballot
			ballots = append(ballots, &out)
		}
	}
	return ballots, nil
}

func (b *ballotStore) CountByPeriod(_ context.Context, periodID string) (int, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	count := 0
	for _, ballot := range b.s.ballots {
		if ballot.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

// CommitVote holds the lock across the existence check, the insert and the
// flag flip, giving the same all-or-nothing behaviour as the DynamoDB
// transaction.
func (b *ballotStore) CommitVote(_ context.Context, ballot *storage.Ballot) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	ballot.SortKey = storage.BallotSortKey(ballot.PeriodID, ballot.Type)
	key := ballotKey(ballot)
	if _, exists := b.s.ballots[key]; exists {
		return storage.ErrBallotExists
	}
	user, ok := b.s.users[ballot.VoterID]
	if !ok {
		return storage.ErrNotFound
	}

	out := *ballot
	b.s.ballots[key] = &out
	if ballot.Type == "MPK" {
		user.HasVotedMpk = true
	} else {
		user.HasVotedOsis = true
	}
	return nil
}

func (b *ballotStore) ResetVoter(_ context.Context, voterID string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.s.users[voterID]
	if !ok {
		return storage.ErrNotFound
	}
	for key, ballot := range b.s.ballots {
		if ballot.VoterID == voterID {
			delete(b.s.ballots, key)
		}
	}
	user.HasVotedOsis = false
	user.HasVotedMpk = false
	return nil
}

func (b *ballotStore) DeleteByVoter(_ context.Context, voterID string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for key, ballot := range b.s.ballots {
		if ballot.VoterID == voterID {
			delete(b.s.ballots, key)
		}
	}
	return nil
}

func (b *ballotStore) DeleteByCandidate(_ context.Context, candidateID string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for key, ballot := range b.s.ballots {
		if ballot.CandidateID == candidateID {
			delete(b.s.ballots, key)
		}
	}
	return nil
}

func (b *ballotStore) DeleteAll(_ context.Context) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.ballots = map[string]*storage.Ballot{}
	return nil
}
