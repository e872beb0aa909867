package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apitesting "github.com/akunpubgmatin-arch/e-voting-v1/api/controllers/testing"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, body []byte) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestSubmitVote_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, nil)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSubmitVote_Success(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	stored := env.getUser(t, "U1")
	assert.True(t, stored.HasVotedOsis)
	assert.False(t, stored.HasVotedMpk)

	ballots, err := env.store.Ballots().GetByVoter(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, ballots, 1)
	assert.Equal(t, "C1", ballots[0].CandidateID)
	assert.Equal(t, "P1", ballots[0].PeriodID)
	assert.Equal(t, "OSIS", ballots[0].Type)
	assert.NotEmpty(t, ballots[0].ID)
}

func TestSubmitVote_IndependentTypes(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)
	env.seedCandidate(t, "C2", "P1", "MPK", 1)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)

	// Used up OSIS, MPK still open.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C2", Type: "MPK"}, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)

	stored := env.getUser(t, "U1")
	assert.True(t, stored.HasVotedOsis)
	assert.True(t, stored.HasVotedMpk)
}

func TestSubmitVote_AlreadyVoted(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)
	env.seedCandidate(t, "C2", "P1", "OSIS", 2)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)

	// Second OSIS vote is rejected even for a different candidate.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C2", Type: "OSIS"}, env.authHeader(t, voter))
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, models.CodeAlreadyVoted, decodeError(t, res.Body.Bytes()).Code)

	ballots, err := env.store.Ballots().GetByVoter(context.Background(), "U1")
	require.NoError(t, err)
	assert.Len(t, ballots, 1)
}

func TestSubmitVote_NoActivePeriod(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", false, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, models.CodeNoActivePeriod, decodeError(t, res.Body.Bytes()).Code)
}

func TestSubmitVote_TimeWindow(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	env.seedPeriod(t, "P1", "2026/2027", true, &start, &end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	original := timeNow
	defer func() { timeNow = original }()

	cases := []struct {
		name     string
		now      time.Time
		wantCode int
		wantErr  string
	}{
		{"before start", start.Add(-time.Minute), http.StatusBadRequest, models.CodeNotStarted},
		{"exactly at start", start, http.StatusOK, ""},
		{"exactly at end", end, http.StatusOK, ""},
		{"after end", end.Add(time.Minute), http.StatusBadRequest, models.CodeEnded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			timeNow = func() time.Time { return tc.now }
			// Fresh flags per sub-test.
			require.NoError(t, env.store.Ballots().ResetVoter(context.Background(), voter.ID))

			res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
				models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))

			assert.Equal(t, tc.wantCode, res.Code, res.Body.String())
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, decodeError(t, res.Body.Bytes()).Code)
			}
		})
	}
}

func TestSubmitVote_InvalidCandidate(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedPeriod(t, "P0", "2025/2026", false, nil, nil)
	env.seedCandidate(t, "OLD", "P0", "OSIS", 1)

	// Unknown candidate.
	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "NOPE", Type: "OSIS"}, env.authHeader(t, voter))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, models.CodeInvalidCandidate, decodeError(t, res.Body.Bytes()).Code)

	// Candidate from a previous period.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "OLD", Type: "OSIS"}, env.authHeader(t, voter))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, models.CodeInvalidCandidate, decodeError(t, res.Body.Bytes()).Code)
}

func TestSubmitVote_CategoryMismatch(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "MPK", 1)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, models.CodeCategoryMismatch, decodeError(t, res.Body.Bytes()).Code)

	// No flag flipped, no ballot written.
	assert.False(t, env.getUser(t, "U1").HasVotedOsis)
}

func TestSubmitVote_InvalidType(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "PRESIDENT"}, env.authHeader(t, voter))

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSubmitVote_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	const attempts = 16
	var successes atomic.Int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
				models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
			if res.Code == http.StatusOK {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	ballots, err := env.store.Ballots().GetByVoter(context.Background(), "U1")
	require.NoError(t, err)
	assert.Len(t, ballots, 1)
}

func TestVotingStatus_NoActivePeriod(t *testing.T) {
	env := newTestEnv(t)

	res := apitesting.PerformRequest(env.router, http.MethodGet, "/api/voting/status", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var status models.VotingStatusResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &status))
	assert.False(t, status.IsActive)
	assert.NotEmpty(t, status.Message)
	assert.Nil(t, status.Periode)
}

func TestVotingStatus_ActivePeriod(t *testing.T) {
	env := newTestEnv(t)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C2", "P1", "OSIS", 2)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)
	env.seedCandidate(t, "C3", "P1", "MPK", 1)

	// Anonymous: no user status.
	res := apitesting.PerformRequest(env.router, http.MethodGet, "/api/voting/status", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var status models.VotingStatusResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &status))
	assert.True(t, status.IsActive)
	require.NotNil(t, status.Candidates)
	require.Len(t, status.Candidates.Osis, 2)
	assert.Equal(t, "C1", status.Candidates.Osis[0].ID)
	assert.Equal(t, "C2", status.Candidates.Osis[1].ID)
	require.Len(t, status.Candidates.Mpk, 1)
	assert.Nil(t, status.UserStatus)

	// Authenticated voter sees their own flags.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)

	res = apitesting.PerformRequest(env.router, http.MethodGet, "/api/voting/status", nil, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &status))
	require.NotNil(t, status.UserStatus)
	assert.True(t, status.UserStatus.HasVotedOsis)
	assert.False(t, status.UserStatus.HasVotedMpk)
}

func TestVotingStatus_OutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	start := timePtr(time.Now().Add(time.Hour))
	end := timePtr(time.Now().Add(2 * time.Hour))
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)

	res := apitesting.PerformRequest(env.router, http.MethodGet, "/api/voting/status", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var status models.VotingStatusResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &status))
	// Period is marked active but voting has not started.
	assert.False(t, status.IsActive)
	require.NotNil(t, status.Periode)
	assert.Equal(t, "P1", status.Periode.ID)
}

func TestQuickCount(t *testing.T) {
	env := newTestEnv(t)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)
	env.seedCandidate(t, "C2", "P1", "OSIS", 2)
	env.seedCandidate(t, "M1", "P1", "MPK", 1)

	voters := []string{"U1", "U2", "U3", "U4"}
	for _, id := range voters {
		env.seedUser(t, id, "student-"+id, models.RoleUser)
	}
	env.seedUser(t, "T1", "teacher1", models.RoleTeacher)
	env.seedUser(t, "A1", "admin", models.RoleAdmin)

	// 3 votes for C1, 1 for C2, none for MPK.
	for _, vote := range []struct{ voter, candidate string }{
		{"U1", "C1"}, {"U2", "C1"}, {"U3", "C1"}, {"U4", "C2"},
	} {
		user := env.getUser(t, vote.voter)
		res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
			models.SubmitVoteRequest{CandidateID: vote.candidate, Type: "OSIS"}, env.authHeader(t, user))
		require.Equal(t, http.StatusOK, res.Code)
	}

	res := apitesting.PerformRequest(env.router, http.MethodGet, "/api/voting/quick-count", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var count models.QuickCountResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &count))
	// Teacher counts as a voter, admin does not.
	assert.Equal(t, 5, count.TotalVoters)
	assert.Equal(t, 4, count.VotedOsis)
	assert.Equal(t, 0, count.VotedMpk)

	require.Len(t, count.OsisResults, 2)
	assert.Equal(t, "C1", count.OsisResults[0].CandidateID)
	assert.Equal(t, 3, count.OsisResults[0].VoteCount)
	assert.InDelta(t, 75.0, count.OsisResults[0].Percentage, 0.001)
	assert.Equal(t, 1, count.OsisResults[1].VoteCount)
	assert.InDelta(t, 25.0, count.OsisResults[1].Percentage, 0.001)

	// Zero ballots in the MPK category: percentage stays 0.
	require.Len(t, count.MpkResults, 1)
	assert.Equal(t, 0, count.MpkResults[0].VoteCount)
	assert.Equal(t, 0.0, count.MpkResults[0].Percentage)
}

func TestQuickCount_NoPeriod(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "U1", "student1", models.RoleUser)

	res := apitesting.PerformRequest(env.router, http.MethodGet, "/api/voting/quick-count", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var count models.QuickCountResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &count))
	assert.Equal(t, 1, count.TotalVoters)
	assert.Empty(t, count.OsisResults)
	assert.Empty(t, count.MpkResults)
}

func TestResetAll(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)

	// Voters cannot trigger a reset.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/voting/reset-all", nil, env.authHeader(t, voter))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/voting/reset-all", nil, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code)

	ballots, err := env.store.Ballots().GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ballots)
	assert.False(t, env.getUser(t, "U1").HasVotedOsis)

	// Running it again on empty state is fine.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/voting/reset-all", nil, env.authHeader(t, admin))
	assert.Equal(t, http.StatusOK, res.Code)

	// And the voter can vote again.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	assert.Equal(t, http.StatusOK, res.Code)
}
