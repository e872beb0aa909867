package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	apitesting "github.com/akunpubgmatin-arch/e-voting-v1/api/controllers/testing"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)
	committee := env.seedUser(t, "K1", "committee1", models.RoleCommittee)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)

	// Voters cannot see the user list.
	res := apitesting.PerformRequest(env.router, http.MethodGet, "/api/users", nil, env.authHeader(t, voter))
	assert.Equal(t, http.StatusForbidden, res.Code)

	// Committee members can.
	res = apitesting.PerformRequest(env.router, http.MethodGet, "/api/users", nil, env.authHeader(t, committee))
	require.Equal(t, http.StatusOK, res.Code)
	var users []models.UserResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &users))
	assert.Len(t, users, 3)

	res = apitesting.PerformRequest(env.router, http.MethodGet, "/api/users?role=USER", nil, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "student1", users[0].Username)
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/users",
		models.UserCreateRequest{Username: "student1", Password: "secret123", FullName: "Student One"},
		env.authHeader(t, admin))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var created models.UserResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	// Role defaults to USER.
	assert.Equal(t, models.RoleUser, created.Role)
	assert.False(t, created.HasVotedOsis)

	// Duplicate username.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users",
		models.UserCreateRequest{Username: "student1", Password: "other", FullName: "Other"},
		env.authHeader(t, admin))
	assert.Equal(t, http.StatusConflict, res.Code)

	// Invalid role.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users",
		models.UserCreateRequest{Username: "x", Password: "y", FullName: "Z", Role: "SUPERADMIN"},
		env.authHeader(t, admin))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	// The new account can actually log in.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "student1", Password: "secret123"}, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestImportUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)
	env.seedUser(t, "U1", "existing", models.RoleUser)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/import",
		models.ImportUsersRequest{Users: []models.ImportUserEntry{
			{Username: "siswa1", FullName: "Siswa One"},
			{Username: "siswa2", FullName: "Siswa Two", Password: "custom-pass"},
			{Username: "existing", FullName: "Should Skip"},
			{Username: "", FullName: "No Username"},
		}}, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var result models.ImportUsersResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 2, result.Skipped)

	// Existing user was not overwritten.
	existing, err := env.store.Users().GetByUsername(context.Background(), "existing")
	require.NoError(t, err)
	assert.Equal(t, "Test existing", existing.FullName)

	// Password defaults to the username.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "siswa1", Password: "siswa1"}, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "siswa2", Password: "custom-pass"}, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestResetUserPassword(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)
	voter := env.seedUserWithPassword(t, "U1", "student1", models.RoleUser, "forgotten")

	// Voters cannot reset other accounts.
	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/A1/reset-password",
		models.ResetPasswordRequest{NewPassword: "hijacked"}, env.authHeader(t, voter))
	assert.Equal(t, http.StatusForbidden, res.Code)

	// Too short.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/U1/reset-password",
		models.ResetPasswordRequest{NewPassword: "abc"}, env.authHeader(t, admin))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/missing/reset-password",
		models.ResetPasswordRequest{NewPassword: "new-secret"}, env.authHeader(t, admin))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/U1/reset-password",
		models.ResetPasswordRequest{NewPassword: "new-secret"}, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	// The old password is gone, the new one logs in.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "student1", Password: "forgotten"}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "student1", Password: "new-secret"}, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	require.Equal(t, http.StatusOK, res.Code)

	// Admins cannot delete themselves.
	res = apitesting.PerformRequest(env.router, http.MethodDelete, "/api/users/A1", nil, env.authHeader(t, admin))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = apitesting.PerformRequest(env.router, http.MethodDelete, "/api/users/U1", nil, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code)

	user, err := env.store.Users().Get(context.Background(), "U1")
	require.NoError(t, err)
	assert.Nil(t, user)
	ballots, err := env.store.Ballots().GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ballots)

	res = apitesting.PerformRequest(env.router, http.MethodDelete, "/api/users/U1", nil, env.authHeader(t, admin))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestResetUserVote(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "A1", "admin", models.RoleAdmin)
	voter := env.seedUser(t, "U1", "student1", models.RoleUser)
	other := env.seedUser(t, "U2", "student2", models.RoleUser)
	start, end := openWindow()
	env.seedPeriod(t, "P1", "2026/2027", true, start, end)
	env.seedCandidate(t, "C1", "P1", "OSIS", 1)

	for _, u := range []string{"U1", "U2"} {
		res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
			models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, env.getUser(t, u)))
		require.Equal(t, http.StatusOK, res.Code)
	}

	res := apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/U1/reset-vote", nil, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code)

	// Only the reset voter is affected.
	assert.False(t, env.getUser(t, "U1").HasVotedOsis)
	assert.True(t, env.getUser(t, "U2").HasVotedOsis)
	ballots, err := env.store.Ballots().GetByVoter(context.Background(), "U1")
	require.NoError(t, err)
	assert.Empty(t, ballots)

	// The voter can vote again after the reset.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/vote",
		models.SubmitVoteRequest{CandidateID: "C1", Type: "OSIS"}, env.authHeader(t, voter))
	assert.Equal(t, http.StatusOK, res.Code)

	// Resetting a voter with no ballots is a no-op, not an error.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/U2/reset-vote", nil, env.authHeader(t, admin))
	require.Equal(t, http.StatusOK, res.Code)
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/U2/reset-vote", nil, env.authHeader(t, admin))
	assert.Equal(t, http.StatusOK, res.Code)

	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/missing/reset-vote", nil, env.authHeader(t, admin))
	assert.Equal(t, http.StatusNotFound, res.Code)

	// Not an admin action for voters.
	res = apitesting.PerformRequest(env.router, http.MethodPost, "/api/users/U2/reset-vote", nil, env.authHeader(t, other))
	assert.Equal(t, http.StatusForbidden, res.Code)
}
