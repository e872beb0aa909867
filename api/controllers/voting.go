package controllers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// timeNow is swapped out in tests to pin the clock against period windows.
var timeNow = time.Now

type VotingController struct {
	periodsStorage    storage.PeriodStorage
	candidatesStorage storage.CandidateStorage
	usersStorage      storage.UserStorage
	ballotsStorage    storage.BallotStorage
	authSecret        string
}

func NewVotingController(periodStorage storage.PeriodStorage, candidateStorage storage.CandidateStorage, userStorage storage.UserStorage, ballotStorage storage.BallotStorage, authSecret string) *VotingController {
	return &VotingController{
		periodsStorage:    periodStorage,
		candidatesStorage: candidateStorage,
		usersStorage:      userStorage,
		ballotsStorage:    ballotStorage,
		authSecret:        authSecret,
	}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.POST("/vote", transport.AuthMiddleware(c.usersStorage, c.authSecret), c.submitVote)
	group.GET("/voting/status", transport.OptionalAuthMiddleware(c.usersStorage, c.authSecret), c.votingStatus)
	group.GET("/voting/quick-count", c.quickCount)
	group.POST("/voting/reset-all", transport.AuthMiddleware(c.usersStorage, c.authSecret), transport.RequireRole(models.RoleAdmin), c.resetAllVotes)
}

// submitVote godoc
// @Summary Cast a ballot for a candidate
// @Description Validates the vote against the active period, time window and
// @Description the caller's own voting flags, then commits ballot + flag atomically
// @Tags voting
// @Accept json
// @Produce json
// @Param vote body models.SubmitVoteRequest true "Vote submission"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Validation rejection, code field tells which"
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Already voted for this type"
// @Failure 500 {object} models.ErrorResponse "Commit failed, safe to retry"
// @Router /api/vote [post]
func (c *VotingController) submitVote(g *gin.Context) {
	var req models.SubmitVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.CandidateID == "" || req.Type == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "candidateId and type are required"})
		return
	}
	if _, ok := models.ValidVoteTypes[models.VoteType(req.Type)]; !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid vote type"})
		return
	}

	user := transport.CurrentUser(g)

	// Fast path: the flag is only a cache, the ballot key condition in
	// CommitVote is what actually prevents the double vote.
	hasVoted := user.HasVotedOsis
	if models.VoteType(req.Type) == models.VoteTypeMpk {
		hasVoted = user.HasVotedMpk
	}
	if hasVoted {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "you have already voted for " + req.Type, Code: models.CodeAlreadyVoted})
		return
	}

	activePeriod, err := c.periodsStorage.GetActive(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("VOTE: failed to look up active period: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting period"})
		return
	}
	if activePeriod == nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "no active voting period", Code: models.CodeNoActivePeriod})
		return
	}

	// Bounds are inclusive, a nil bound leaves that side open.
	now := timeNow()
	if activePeriod.StartTime != nil && now.Before(*activePeriod.StartTime) {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "voting has not started yet", Code: models.CodeNotStarted})
		return
	}
	if activePeriod.EndTime != nil && now.After(*activePeriod.EndTime) {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "voting has ended", Code: models.CodeEnded})
		return
	}

	candidate, err := c.candidatesStorage.Get(g.Request.Context(), req.CandidateID)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to look up candidate %s: %v", req.CandidateID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidate"})
		return
	}
	if candidate == nil || candidate.PeriodID != activePeriod.ID {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "candidate is not valid for the active period", Code: models.CodeInvalidCandidate})
		return
	}
	if candidate.Type != req.Type {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "candidate type does not match the requested type", Code: models.CodeCategoryMismatch})
		return
	}

	ballot := &storage.Ballot{
		VoterID:     user.ID,
		ID:          uuid.NewString(),
		CandidateID: candidate.ID,
		PeriodID:    activePeriod.ID,
		Type:        candidate.Type,
		CastAt:      now.UTC(),
	}
	if err := c.ballotsStorage.CommitVote(g.Request.Context(), ballot); err != nil {
		if errors.Is(err, storage.ErrBallotExists) {
			// Two concurrent submissions raced past the flag check; the loser
			// gets the same outcome as the fast path.
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "you have already voted for " + req.Type, Code: models.CodeAlreadyVoted})
			return
		}
		logging.Log.Errorf("VOTE: commit failed for voter %s: %v", user.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save vote, please retry", Code: models.CodeCommitFailed})
		return
	}

	logging.Log.Infof("VOTE: voter %s cast a %s ballot for candidate %s", user.ID, ballot.Type, candidate.ID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "vote recorded"})
}

// votingStatus godoc
// @Summary Current voting window, candidates and caller's vote status
// @Tags voting
// @Produce json
// @Success 200 {object} models.VotingStatusResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/voting/status [get]
func (c *VotingController) votingStatus(g *gin.Context) {
	activePeriod, err := c.periodsStorage.GetActive(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("VOTE: failed to look up active period: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting period"})
		return
	}
	if activePeriod == nil {
		g.JSON(http.StatusOK, &models.VotingStatusResponse{
			IsActive: false,
			Message:  "no active voting period",
		})
		return
	}

	candidates, err := c.candidatesStorage.GetByPeriod(g.Request.Context(), activePeriod.ID)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to load candidates for period %s: %v", activePeriod.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	}
	sortCandidates(candidates)

	groups := &models.CandidateGroups{
		Osis: make([]models.CandidateResponse, 0),
		Mpk:  make([]models.CandidateResponse, 0),
	}
	for _, candidate := range candidates {
		resp := models.TransformCandidateFromStorage(candidate, 0)
		if candidate.Type == string(models.VoteTypeMpk) {
			groups.Mpk = append(groups.Mpk, resp)
		} else {
			groups.Osis = append(groups.Osis, resp)
		}
	}

	now := timeNow()
	withinWindow := (activePeriod.StartTime == nil || !now.Before(*activePeriod.StartTime)) &&
		(activePeriod.EndTime == nil || !now.After(*activePeriod.EndTime))

	response := &models.VotingStatusResponse{
		IsActive: activePeriod.IsActive && withinWindow,
		Periode: &models.PeriodInfo{
			ID:        activePeriod.ID,
			Name:      activePeriod.Name,
			StartTime: activePeriod.StartTime,
			EndTime:   activePeriod.EndTime,
		},
		Candidates: groups,
	}
	if user := transport.CurrentUser(g); user != nil {
		response.UserStatus = &models.UserVoteStatus{
			HasVotedOsis: user.HasVotedOsis,
			HasVotedMpk:  user.HasVotedMpk,
		}
	}

	g.JSON(http.StatusOK, response)
}

// quickCount godoc
// @Summary Live tally per candidate plus participation counts
// @Description Recomputed from the ballot ledger on every call; no caching.
// @Tags voting
// @Produce json
// @Param periodeId query string false "Period ID, defaults to the active period"
// @Success 200 {object} models.QuickCountResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/voting/quick-count [get]
func (c *VotingController) quickCount(g *gin.Context) {
	periodID := g.Query("periodeId")
	if periodID == "" {
		activePeriod, err := c.periodsStorage.GetActive(g.Request.Context())
		if err != nil {
			logging.Log.Errorf("VOTE: failed to look up active period: %v", err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting period"})
			return
		}
		if activePeriod != nil {
			periodID = activePeriod.ID
		}
	}

	users, err := c.usersStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("VOTE: failed to load users: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voters"})
		return
	}

	// Participation counts run over the whole voter roll regardless of the
	// requested period: the has-voted flags carry no period scope.
	response := &models.QuickCountResponse{
		OsisResults: make([]models.CandidateResult, 0),
		MpkResults:  make([]models.CandidateResult, 0),
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

	if periodID == "" {
		g.JSON(http.StatusOK, response)
		return
	}

	candidates, err := c.candidatesStorage.GetByPeriod(g.Request.Context(), periodID)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to load candidates for period %s: %v", periodID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	}
	sortCandidates(candidates)

	ballots, err := c.ballotsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("VOTE: failed to load ballots: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}

	votesPerCandidate := make(map[string]int)
	for _, ballot := range ballots {
		if ballot.PeriodID == periodID {
			votesPerCandidate[ballot.CandidateID]++
		}
	}

	totalVotes := map[string]int{}
	for _, candidate := range candidates {
		totalVotes[candidate.Type] += votesPerCandidate[candidate.ID]
	}

	for _, candidate := range candidates {
		count := votesPerCandidate[candidate.ID]
		percentage := 0.0
		if total := totalVotes[candidate.Type]; total > 0 {
			percentage = float64(count) / float64(total) * 100
		}
		result := models.CandidateResult{
			CandidateID:   candidate.ID,
			CandidateName: models.CandidateDisplayName(candidate),
			Type:          candidate.Type,
			VoteCount:     count,
			Percentage:    percentage,
		}
		if candidate.Type == string(models.VoteTypeMpk) {
			response.MpkResults = append(response.MpkResults, result)
		} else {
			response.OsisResults = append(response.OsisResults, result)
		}
	}

	g.JSON(http.StatusOK, response)
}

// @Security AdminToken
// resetAllVotes godoc
// @Summary Delete every ballot and clear all voting flags
// @Description Idempotent; a failure after partial progress is reported as an error.
// @Tags voting
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/voting/reset-all [post]
func (c *VotingController) resetAllVotes(g *gin.Context) {
	if err := c.ballotsStorage.DeleteAll(g.Request.Context()); err != nil {
		logging.Log.Errorf("RESET: failed to delete ballots: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "reset failed while deleting ballots"})
		return
	}
	if err := c.usersStorage.ResetAllFlags(g.Request.Context()); err != nil {
		// Ballots are gone but some flags may still be set; surface it loudly
		// so an operator reruns the reset.
		logging.Log.Errorf("RESET: ballots deleted but flag reset failed: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "reset incomplete: voting flags not fully cleared, run reset again"})
		return
	}

	logging.Log.Warnf("RESET: all ballots deleted and voting flags cleared")
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "all voting data has been reset"})
}

func sortCandidates(candidates []*storage.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Type != candidates[j].Type {
			return candidates[i].Type < candidates[j].Type
		}
		return candidates[i].OrderNumber < candidates[j].OrderNumber
	})
}
