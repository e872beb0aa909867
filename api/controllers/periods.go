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
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type PeriodsController struct {
	periodsStorage    storage.PeriodStorage
	candidatesStorage storage.CandidateStorage
	usersStorage      storage.UserStorage
	ballotsStorage    storage.BallotStorage
	authSecret        string
}

func NewPeriodsController(periodStorage storage.PeriodStorage, candidateStorage storage.CandidateStorage, userStorage storage.UserStorage, ballotStorage storage.BallotStorage, authSecret string) *PeriodsController {
	return &PeriodsController{
		periodsStorage:    periodStorage,
		candidatesStorage: candidateStorage,
		usersStorage:      userStorage,
		ballotsStorage:    ballotStorage,
		authSecret:        authSecret,
	}
}

func (c *PeriodsController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/periodes")
	admin := []gin.HandlerFunc{transport.AuthMiddleware(c.usersStorage, c.authSecret), transport.RequireRole(models.RoleAdmin)}

	group.GET("", c.getPeriods)
	group.GET("/active", c.getActivePeriod)
	group.GET("/:id", c.getPeriod)
	group.POST("", append(admin, c.createPeriod)...)
	group.PUT("/:id", append(admin, c.updatePeriod)...)
	group.DELETE("/:id", append(admin, c.deletePeriod)...)
}

// getPeriods godoc
// @Summary List all voting periods, newest first
// @Tags periodes
// @Produce json
// @Success 200 {array} models.PeriodResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/periodes [get]
func (c *PeriodsController) getPeriods(g *gin.Context) {
	periods, err := c.periodsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to list periods: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load periods"})
		return
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].CreatedAt.After(periods[j].CreatedAt)
	})

	candidateCounts, ballotCounts, err := c.countsPerPeriod(g)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period counts"})
		return
	}

	response := make([]models.PeriodResponse, 0, len(periods))
	for _, period := range periods {
		response = append(response, models.TransformPeriodFromStorage(period, candidateCounts[period.ID], ballotCounts[period.ID]))
	}
	g.JSON(http.StatusOK, response)
}

// getActivePeriod godoc
// @Summary Get the currently active period
// @Tags periodes
// @Produce json
// @Success 200 {object} models.PeriodResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/periodes/active [get]
func (c *PeriodsController) getActivePeriod(g *gin.Context) {
	period, err := c.periodsStorage.GetActive(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to look up active period: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load active period"})
		return
	}
	if period == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no active period", Code: models.CodeNotFound})
		return
	}

	candidateCount, ballotCount, err := c.countsForPeriod(g, period.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period counts"})
		return
	}
	g.JSON(http.StatusOK, models.TransformPeriodFromStorage(period, candidateCount, ballotCount))
}

// getPeriod godoc
// @Summary Get one period by ID
// @Tags periodes
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} models.PeriodResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/periodes/{id} [get]
func (c *PeriodsController) getPeriod(g *gin.Context) {
	period, err := c.periodsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to get period %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period"})
		return
	}
	if period == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "period not found", Code: models.CodeNotFound})
		return
	}

	candidateCount, ballotCount, err := c.countsForPeriod(g, period.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period counts"})
		return
	}
	g.JSON(http.StatusOK, models.TransformPeriodFromStorage(period, candidateCount, ballotCount))
}

// @Security AdminToken
// createPeriod godoc
// @Summary Create a new voting period (inactive, no window)
// @Tags periodes
// @Accept json
// @Produce json
// @Param periode body models.PeriodCreateRequest true "New period"
// @Success 201 {object} models.PeriodResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/periodes [post]
func (c *PeriodsController) createPeriod(g *gin.Context) {
	var req models.PeriodCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "name is required"})
		return
	}

	id, err := gonanoid.Generate(models.Alphabet, 12)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to generate id: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create period"})
		return
	}

	period := &storage.Period{
		ID:        id,
		Name:      req.Name,
		IsActive:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.periodsStorage.Create(g.Request.Context(), period); err != nil {
		logging.Log.Errorf("PERIOD: failed to create period %s: %v", req.Name, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create period"})
		return
	}

	logging.Log.Infof("PERIOD: created period %s (%s)", period.Name, period.ID)
	g.JSON(http.StatusCreated, models.TransformPeriodFromStorage(period, 0, 0))
}

// @Security AdminToken
// updatePeriod godoc
// @Summary Update a period's name, window or active flag
// @Description Setting isActive=true deactivates every other period in the
// @Description same write, so at most one period is ever active.
// @Tags periodes
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param periode body models.PeriodUpdateRequest true "Fields to change"
// @Success 200 {object} models.PeriodResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/periodes/{id} [put]
func (c *PeriodsController) updatePeriod(g *gin.Context) {
	var req models.PeriodUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request body"})
		return
	}

	period, err := c.periodsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to get period %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period"})
		return
	}
	if period == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "period not found", Code: models.CodeNotFound})
		return
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartTime != nil {
		period.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		period.EndTime = req.EndTime
	}
	if period.StartTime != nil && period.EndTime != nil && period.EndTime.Before(*period.StartTime) {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "endTime must not be before startTime"})
		return
	}
	if req.IsActive != nil && !*req.IsActive {
		period.IsActive = false
	}

	if err := c.periodsStorage.Update(g.Request.Context(), period); err != nil {
		logging.Log.Errorf("PERIOD: failed to update period %s: %v", period.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update period"})
		return
	}

	if req.IsActive != nil && *req.IsActive {
		if err := c.periodsStorage.Activate(g.Request.Context(), period.ID); err != nil {
			logging.Log.Errorf("PERIOD: failed to activate period %s: %v", period.ID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not activate period"})
			return
		}
		period.IsActive = true
		logging.Log.Infof("PERIOD: activated period %s (%s)", period.Name, period.ID)
	}

	candidateCount, ballotCount, err := c.countsForPeriod(g, period.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period counts"})
		return
	}
	g.JSON(http.StatusOK, models.TransformPeriodFromStorage(period, candidateCount, ballotCount))
}

// @Security AdminToken
// deletePeriod godoc
// @Summary Delete a period and its candidates
// @Description Refused while any ballot still references the period; reset or
// @Description delete those ballots first.
// @Tags periodes
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Ballots still reference this period"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/periodes/{id} [delete]
func (c *PeriodsController) deletePeriod(g *gin.Context) {
	period, err := c.periodsStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to get period %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load period"})
		return
	}
	if period == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "period not found", Code: models.CodeNotFound})
		return
	}

	ballotCount, err := c.ballotsStorage.CountByPeriod(g.Request.Context(), period.ID)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to count ballots for period %s: %v", period.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}
	if ballotCount > 0 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Error: "period has recorded ballots, reset them before deleting",
			Code:  models.CodePreconditionFailed,
		})
		return
	}

	candidates, err := c.candidatesStorage.GetByPeriod(g.Request.Context(), period.ID)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to load candidates for period %s: %v", period.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load candidates"})
		return
	}
	for _, candidate := range candidates {
		if err := c.candidatesStorage.Delete(g.Request.Context(), candidate.ID); err != nil {
			logging.Log.Errorf("PERIOD: failed to delete candidate %s: %v", candidate.ID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete period candidates"})
			return
		}
	}

	if err := c.periodsStorage.Delete(g.Request.Context(), period.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "period not found", Code: models.CodeNotFound})
			return
		}
		logging.Log.Errorf("PERIOD: failed to delete period %s: %v", period.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete period"})
		return
	}

	logging.Log.Infof("PERIOD: deleted period %s (%s) with %d candidates", period.Name, period.ID, len(candidates))
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "period deleted"})
}

func (c *PeriodsController) countsForPeriod(g *gin.Context, periodID string) (int, int, error) {
	candidates, err := c.candidatesStorage.GetByPeriod(g.Request.Context(), periodID)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to load candidates for period %s: %v", periodID, err)
		return 0, 0, err
	}
	ballotCount, err := c.ballotsStorage.CountByPeriod(g.Request.Context(), periodID)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to count ballots for period %s: %v", periodID, err)
		return 0, 0, err
	}
	return len(candidates), ballotCount, nil
}

func (c *PeriodsController) countsPerPeriod(g *gin.Context) (map[string]int, map[string]int, error) {
	candidates, err := c.candidatesStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to load candidates: %v", err)
		return nil, nil, err
	}
	ballots, err := c.ballotsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to load ballots: %v", err)
		return nil, nil, err
	}

	candidateCounts := make(map[string]int)
	for _, candidate := range candidates {
		candidateCounts[candidate.PeriodID]++
	}
	ballotCounts := make(map[string]int)
	for _, ballot := range ballots {
		ballotCounts[ballot.PeriodID]++
	}
	return candidateCounts, ballotCounts, nil
}
