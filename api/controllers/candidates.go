package controllers

import (
	"net/http"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type CandidatesController struct {
	candidatesStorage storage.CandidateStorage
	periodsStorage    storage.PeriodStorage
	usersStorage      storage.UserStorage
	ballotsStorage    storage.BallotStorage
	authSecret        string
}

func NewCandidatesController(candidateStorage storage.CandidateStorage, periodStorage storage.PeriodStorage, userStorage storage.UserStorage, ballotStorage storage.BallotStorage, authSecret string) *CandidatesController {
	return &CandidatesController{
		candidatesStorage: candidateStorage,
		periodsStorage:    periodStorage,
		usersStorage:      userStorage,
		ballotsStorage:    ballotStorage,
		authSecret:        authSecret,
	}
}

func (c *CandidatesController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/candidates")
	admin := []gin.HandlerFunc{transport.AuthMiddleware(c.usersStorage, c.authSecret), transport.RequireRole(models.RoleAdmin)}

	group.GET("", c.getCandidates)
	group.GET("/:id", c.getCandidate)
	group.POST("", append(admin, c.createCandidate)...)
	group.PUT("/:id", append(admin, c.updateCandidate)...)
	group.DELETE("/:id", append(admin, c.deleteCandidate)...)
}

// getCandidates godoc
// @Summary List candidates with their vote counts
// @Tags candidates
// @Produce json
// @Param periodeId query string false "Filter by period"
// @Param type query string false "Filter by type (OSIS or MPK)"
// @Success 200 {array} models.CandidateResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/candidates [get]
func (c *CandidatesController) getCandidates(g *gin.Context) {
	periodID := g.Query("periodeId")
	voteType := g.Query("type")

	var candidates []*storage.Candidate
	var err error
	if periodID != "" {
		candidates, err = c.candidatesStorage.GetByPeriod(g.Request.Context(), periodID)
	} else {
		candidates, err = c.candidatesStorage.GetAll(g.Request.Context())
	}
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to list candidates: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	}

	if voteType != "" {
		filtered := candidates[:0]
		for _, candidate := range candidates {
			if candidate.Type == voteType {
				filtered = append(filtered, candidate)
			}
		}
		candidates = filtered
	}
	sortCandidates(candidates)

	ballots, err := c.ballotsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to load ballots: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}
	votesPerCandidate := make(map[string]int)
	for _, ballot := range ballots {
		votesPerCandidate[ballot.CandidateID]++
	}

	response := make([]models.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		response = append(response, models.TransformCandidateFromStorage(candidate, votesPerCandidate[candidate.ID]))
	}
	g.JSON(http.StatusOK, response)
}

// getCandidate godoc
// @Summary Get one candidate by ID
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.CandidateResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/candidates/{id} [get]
func (c *CandidatesController) getCandidate(g *gin.Context) {
	candidate, err := c.candidatesStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to get candidate %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidate"})
		return
	}
	if candidate == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "candidate not found", Code: models.CodeNotFound})
		return
	}

	ballots, err := c.ballotsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to load ballots: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}
	count := 0
	for _, ballot := range ballots {
		if ballot.CandidateID == candidate.ID {
			count++
		}
	}
	g.JSON(http.StatusOK, models.TransformCandidateFromStorage(candidate, count))
}

// @Security AdminToken
// createCandidate godoc
// @Summary Register a candidate pair for a period
// @Tags candidates
// @Accept json
// @Produce json
// @Param candidate body models.CandidateCreateRequest true "New candidate"
// @Success 201 {object} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/candidates [post]
func (c *CandidatesController) createCandidate(g *gin.Context) {
	var req models.CandidateCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.ChairmanName == "" || req.ViceChairmanName == "" || req.Type == "" || req.PeriodeID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "chairmanName, viceChairmanName, type and periodeId are required"})
		return
	}
	if _, ok := models.ValidVoteTypes[models.VoteType(req.Type)]; !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid candidate type"})
		return
	}
	if req.OrderNumber < 1 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "orderNumber must be at least 1"})
		return
	}

	period, err := c.periodsStorage.Get(g.Request.Context(), req.PeriodeID)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to get period %s: %v", req.PeriodeID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period"})
		return
	}
	if period == nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "period does not exist"})
		return
	}

	if taken, err := c.orderNumberTaken(g, req.PeriodeID, req.Type, req.OrderNumber, ""); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	} else if taken {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "orderNumber already used for this period and type"})
		return
	}

	id, err := gonanoid.Generate(models.Alphabet, 12)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to generate id: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create candidate"})
		return
	}

	candidate := &storage.Candidate{
		ID:               id,
		ChairmanName:     req.ChairmanName,
		ViceChairmanName: req.ViceChairmanName,
		Photo:            req.Photo,
		Visi:             req.Visi,
		Misi:             req.Misi,
		Type:             req.Type,
		OrderNumber:      req.OrderNumber,
		PeriodID:         req.PeriodeID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := c.candidatesStorage.Create(g.Request.Context(), candidate); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to create candidate %s: %v", models.CandidateDisplayName(candidate), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create candidate"})
		return
	}

	logging.Log.Infof("CANDIDATE: created %s candidate %s (%s)", candidate.Type, models.CandidateDisplayName(candidate), candidate.ID)
	g.JSON(http.StatusCreated, models.TransformCandidateFromStorage(candidate, 0))
}

// @Security AdminToken
// updateCandidate godoc
// @Summary Update a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param candidate body models.CandidateUpdateRequest true "Fields to change"
// @Success 200 {object} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/candidates/{id} [put]
func (c *CandidatesController) updateCandidate(g *gin.Context) {
	var req models.CandidateUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request body"})
		return
	}

	candidate, err := c.candidatesStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to get candidate %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidate"})
		return
	}
	if candidate == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "candidate not found", Code: models.CodeNotFound})
		return
	}

	if req.Type != "" {
		if _, ok := models.ValidVoteTypes[models.VoteType(req.Type)]; !ok {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid candidate type"})
			return
		}
		candidate.Type = req.Type
	}
	if req.ChairmanName != "" {
		candidate.ChairmanName = req.ChairmanName
	}
	if req.ViceChairmanName != "" {
		candidate.ViceChairmanName = req.ViceChairmanName
	}
	if req.Photo != "" {
		candidate.Photo = req.Photo
	}
	if req.Visi != "" {
		candidate.Visi = req.Visi
	}
	if req.Misi != "" {
		candidate.Misi = req.Misi
	}
	if req.OrderNumber > 0 {
		candidate.OrderNumber = req.OrderNumber
	}

	if taken, err := c.orderNumberTaken(g, candidate.PeriodID, candidate.Type, candidate.OrderNumber, candidate.ID); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	} else if taken {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "orderNumber already used for this period and type"})
		return
	}

	if err := c.candidatesStorage.Update(g.Request.Context(), candidate); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to update candidate %s: %v", candidate.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update candidate"})
		return
	}

	ballots, err := c.ballotsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to load ballots: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}
	count := 0
	for _, ballot := range ballots {
		if ballot.CandidateID == candidate.ID {
			count++
		}
	}
	g.JSON(http.StatusOK, models.TransformCandidateFromStorage(candidate, count))
}

// @Security AdminToken
// deleteCandidate godoc
// @Summary Delete a candidate and its ballots
// @Description Ballots cast for the candidate are removed with it. The voters'
// @Description has-voted flags stay set, so those voters cannot vote again.
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/candidates/{id} [delete]
func (c *CandidatesController) deleteCandidate(g *gin.Context) {
	candidate, err := c.candidatesStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to get candidate %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidate"})
		return
	}
	if candidate == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "candidate not found", Code: models.CodeNotFound})
		return
	}

	if err := c.ballotsStorage.DeleteByCandidate(g.Request.Context(), candidate.ID); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to delete ballots for candidate %s: %v", candidate.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete candidate ballots"})
		return
	}
	if err := c.candidatesStorage.Delete(g.Request.Context(), candidate.ID); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to delete candidate %s: %v", candidate.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete candidate"})
		return
	}

	logging.Log.Infof("CANDIDATE: deleted candidate %s (%s)", models.CandidateDisplayName(candidate), candidate.ID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "candidate deleted"})
}

func (c *CandidatesController) orderNumberTaken(g *gin.Context, periodID, voteType string, orderNumber int, excludeID string) (bool, error) {
	candidates, err := c.candidatesStorage.GetByPeriod(g.Request.Context(), periodID)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to load candidates for period %s: %v", periodID, err)
		return false, err
	}
	for _, other := range candidates {
		if other.ID != excludeID && other.Type == voteType && other.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}
