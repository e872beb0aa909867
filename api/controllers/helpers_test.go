package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/auth"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func init() {
	logging.BoostrapLogger()
}

// testEnv wires every controller against the in-memory store, the same way
// the server wires them against DynamoDB.
type testEnv struct {
	store  *memory.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	router := transport.NewRouter(gin.TestMode)

	NewVotingController(store.Periods(), store.Candidates(), store.Users(), store.Ballots(), testSecret).RegisterRoutes(router)
	NewPeriodsController(store.Periods(), store.Candidates(), store.Users(), store.Ballots(), testSecret).RegisterRoutes(router)
	NewCandidatesController(store.Candidates(), store.Periods(), store.Users(), store.Ballots(), testSecret).RegisterRoutes(router)
	NewUsersController(store.Users(), store.Ballots(), testSecret).RegisterRoutes(router)
	NewAuthController(store.Users(), testSecret, time.Hour).RegisterRoutes(router)
	NewStatsController(store.Users(), store.Candidates(), store.Periods(), testSecret).RegisterRoutes(router)

	return &testEnv{store: store, router: router}
}

func (e *testEnv) seedUser(t *testing.T, id, username, role string) *storage.User {
	t.Helper()
	user := &storage.User{
		ID:        id,
		Username:  username,
		Password:  "not-a-real-hash",
		FullName:  "Test " + username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) seedUserWithPassword(t *testing.T, id, username, role, password string) *storage.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &storage.User{
		ID:        id,
		Username:  username,
		Password:  hash,
		FullName:  "Test " + username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) seedPeriod(t *testing.T, id, name string, active bool, start, end *time.Time) *storage.Period {
	t.Helper()
	period := &storage.Period{
		ID:        id,
		Name:      name,
		IsActive:  active,
		StartTime: start,
		EndTime:   end,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.Periods().Create(context.Background(), period))
	return period
}

func (e *testEnv) seedCandidate(t *testing.T, id, periodID, voteType string, orderNumber int) *storage.Candidate {
	t.Helper()
	candidate := &storage.Candidate{
		ID:               id,
		ChairmanName:     "Chair " + id,
		ViceChairmanName: "Vice " + id,
		Type:             voteType,
		OrderNumber:      orderNumber,
		PeriodID:         periodID,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, e.store.Candidates().Create(context.Background(), candidate))
	return candidate
}

func (e *testEnv) authHeader(t *testing.T, user *storage.User) map[string]string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, time.Hour, user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func (e *testEnv) getUser(t *testing.T, id string) *storage.User {
	t.Helper()
	user, err := e.store.Users().Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func timePtr(t time.Time) *time.Time { return &t }

// openWindow returns a window around now so votes are accepted.
func openWindow() (*time.Time, *time.Time) {
	return timePtr(time.Now().Add(-time.Hour)), timePtr(time.Now().Add(time.Hour))
}
