package controllers

import (
	"net/http"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/gin-gonic/gin"
)

type StatsController struct {
	usersStorage      storage.UserStorage
	candidatesStorage storage.CandidateStorage
	periodsStorage    storage.PeriodStorage
	authSecret        string
}

func NewStatsController(userStorage storage.UserStorage, candidateStorage storage.CandidateStorage, periodStorage storage.PeriodStorage, authSecret string) *StatsController {
	return &StatsController{
		usersStorage:      userStorage,
		candidatesStorage: candidateStorage,
		periodsStorage:    periodStorage,
		authSecret:        authSecret,
	}
}

func (c *StatsController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/stats")
	group.Use(transport.AuthMiddleware(c.usersStorage, c.authSecret), transport.RequireRole(models.RoleAdmin, models.RoleCommittee))

	group.GET("/dashboard", c.dashboard)
}

// @Security AdminToken
// dashboard godoc
// @Summary Aggregate counts for the admin dashboard
// @Description Participation rate is cast votes over the two votes each
// @Description registered voter gets, in percent.
// @Tags stats
// @Produce json
// @Success 200 {object} models.DashboardStatsResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/stats/dashboard [get]
func (c *StatsController) dashboard(g *gin.Context) {
	users, err := c.usersStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("STATS: failed to load users: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load users"})
		return
	}
	candidates, err := c.candidatesStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("STATS: failed to load candidates: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	}
	periods, err := c.periodsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("STATS: failed to load periods: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load periods"})
		return
	}

	response := &models.DashboardStatsResponse{
		TotalUsers:      len(users),
		TotalCandidates: len(candidates),
		TotalPeriodes:   len(periods),
	}
	for _, user := range users {
		if !models.VoterRoles[user.Role] {
			continue
		}
		response.TotalVoters++
		if user.HasVotedOsis {
			response.VotedOsis++
		}
		if user.HasVotedMpk {
			response.VotedMpk++
		}
	}
	// Every voter gets two votes, one per type.
	if response.TotalVoters > 0 {
		response.ParticipationRate = float64(response.VotedOsis+response.VotedMpk) / float64(2*response.TotalVoters) * 100
	}

	g.JSON(http.StatusOK, response)
}
