package controllers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/auth"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var validRoles = map[string]bool{
	models.RoleAdmin:     true,
	models.RoleCommittee: true,
	models.RoleTeacher:   true,
	models.RoleUser:      true,
}

type UsersController struct {
	usersStorage   storage.UserStorage
	ballotsStorage storage.BallotStorage
	authSecret     string
}

func NewUsersController(userStorage storage.UserStorage, ballotStorage storage.BallotStorage, authSecret string) *UsersController {
	return &UsersController{
		usersStorage:   userStorage,
		ballotsStorage: ballotStorage,
		authSecret:     authSecret,
	}
}

func (c *UsersController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/users")
	group.Use(transport.AuthMiddleware(c.usersStorage, c.authSecret))
	admin := transport.RequireRole(models.RoleAdmin)

	group.GET("", transport.RequireRole(models.RoleAdmin, models.RoleCommittee), c.getUsers)
	group.POST("", admin, c.createUser)
	group.POST("/import", admin, c.importUsers)
	group.DELETE("/:id", admin, c.deleteUser)
	group.POST("/:id/reset-vote", admin, c.resetUserVote)
	group.POST("/:id/reset-password", admin, c.resetUserPassword)
}

// @Security AdminToken
// getUsers godoc
// @Summary List users, newest first
// @Tags users
// @Produce json
// @Param role query string false "Filter by role"
// @Success 200 {array} models.UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/users [get]
func (c *UsersController) getUsers(g *gin.Context) {
	users, err := c.usersStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("USER: failed to list users: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load users"})
		return
	}

	role := g.Query("role")
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	response := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		if role != "" && user.Role != role {
			continue
		}
		response = append(response, models.TransformUserFromStorage(user))
	}
	g.JSON(http.StatusOK, response)
}

// @Security AdminToken
// createUser godoc
// @Summary Create a user account
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.UserCreateRequest true "New user"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Username already taken"
// @Router /api/users [post]
func (c *UsersController) createUser(g *gin.Context) {
	var req models.UserCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" || req.FullName == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "username, password and fullName are required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !validRoles[req.Role] {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid role"})
		return
	}

	existing, err := c.usersStorage.GetByUsername(g.Request.Context(), req.Username)
	if err != nil {
		logging.Log.Errorf("USER: failed to look up username %s: %v", req.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}
	if existing != nil {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "username already taken"})
		return
	}

	user, err := c.buildUser(req.Username, req.Password, req.FullName, req.Role)
	if err != nil {
		logging.Log.Errorf("USER: failed to build user %s: %v", req.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}
	if err := c.usersStorage.Create(g.Request.Context(), user); err != nil {
		logging.Log.Errorf("USER: failed to create user %s: %v", req.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}

	logging.Log.Infof("USER: created %s user %s (%s)", user.Role, user.Username, user.ID)
	g.JSON(http.StatusCreated, models.TransformUserFromStorage(user))
}

// @Security AdminToken
// importUsers godoc
// @Summary Bulk-import user accounts
// @Description Entries whose username already exists are skipped, not
// @Description overwritten. A missing password defaults to the username.
// @Tags users
// @Accept json
// @Produce json
// @Param users body models.ImportUsersRequest true "Accounts to import"
// @Success 200 {object} models.ImportUsersResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/users/import [post]
func (c *UsersController) importUsers(g *gin.Context) {
	var req models.ImportUsersRequest
	if err := g.ShouldBindJSON(&req); err != nil || len(req.Users) == 0 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "users list is required"})
		return
	}

	imported, skipped := 0, 0
	for _, entry := range req.Users {
		if entry.Username == "" || entry.FullName == "" {
			skipped++
			continue
		}
		role := entry.Role
		if role == "" {
			role = models.RoleUser
		}
		if !validRoles[role] {
			skipped++
			continue
		}

		existing, err := c.usersStorage.GetByUsername(g.Request.Context(), entry.Username)
		if err != nil {
			logging.Log.Errorf("USER: import lookup failed for %s: %v", entry.Username, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "import failed"})
			return
		}
		if existing != nil {
			skipped++
			continue
		}

		password := entry.Password
		if password == "" {
			password = entry.Username
		}
		user, err := c.buildUser(entry.Username, password, entry.FullName, role)
		if err != nil {
			logging.Log.Errorf("USER: import failed to build user %s: %v", entry.Username, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "import failed"})
			return
		}
		if err := c.usersStorage.Create(g.Request.Context(), user); err != nil {
			logging.Log.Errorf("USER: import failed to create user %s: %v", entry.Username, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "import failed"})
			return
		}
		imported++
	}

	logging.Log.Infof("USER: imported %d users, skipped %d", imported, skipped)
	g.JSON(http.StatusOK, &models.ImportUsersResponse{
		Message: "import finished",
		Count:   imported,
		Skipped: skipped,
	})
}

// @Security AdminToken
// deleteUser godoc
// @Summary Delete a user and their ballots
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [delete]
func (c *UsersController) deleteUser(g *gin.Context) {
	target, err := c.usersStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("USER: failed to get user %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load user"})
		return
	}
	if target == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found", Code: models.CodeNotFound})
		return
	}
	if caller := transport.CurrentUser(g); caller != nil && caller.ID == target.ID {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "cannot delete your own account"})
		return
	}

	if err := c.ballotsStorage.DeleteByVoter(g.Request.Context(), target.ID); err != nil {
		logging.Log.Errorf("USER: failed to delete ballots for user %s: %v", target.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete user ballots"})
		return
	}
	if err := c.usersStorage.Delete(g.Request.Context(), target.ID); err != nil {
		logging.Log.Errorf("USER: failed to delete user %s: %v", target.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete user"})
		return
	}

	logging.Log.Infof("USER: deleted user %s (%s)", target.Username, target.ID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "user deleted"})
}

// @Security AdminToken
// resetUserVote godoc
// @Summary Delete one voter's ballots and clear their flags
// @Description Ballots and both has-voted flags go in a single transaction, so
// @Description the voter is never left able to vote twice. Idempotent.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id}/reset-vote [post]
func (c *UsersController) resetUserVote(g *gin.Context) {
	if err := c.ballotsStorage.ResetVoter(g.Request.Context(), g.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found", Code: models.CodeNotFound})
			return
		}
		logging.Log.Errorf("RESET: failed to reset voter %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not reset voter"})
		return
	}

	logging.Log.Infof("RESET: cleared ballots and flags for voter %s", g.Param("id"))
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "voter reset"})
}

// @Security AdminToken
// resetUserPassword godoc
// @Summary Set a new password for a user
// @Description Recovery path for lost accounts; the target's old password is
// @Description not required.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param password body models.ResetPasswordRequest true "New password"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id}/reset-password [post]
func (c *UsersController) resetUserPassword(g *gin.Context) {
	var req models.ResetPasswordRequest
	if err := g.ShouldBindJSON(&req); err != nil || len(req.NewPassword) < 6 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "newPassword must be at least 6 characters"})
		return
	}

	target, err := c.usersStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		logging.Log.Errorf("USER: failed to get user %s: %v", g.Param("id"), err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load user"})
		return
	}
	if target == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found", Code: models.CodeNotFound})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logging.Log.Errorf("USER: failed to hash password for %s: %v", target.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not reset password"})
		return
	}
	target.Password = hash
	if err := c.usersStorage.Update(g.Request.Context(), target); err != nil {
		logging.Log.Errorf("USER: failed to update password for %s: %v", target.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not reset password"})
		return
	}

	logging.Log.Infof("USER: password reset for user %s (%s)", target.Username, target.ID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "password reset"})
}

func (c *UsersController) buildUser(username, password, fullName, role string) (*storage.User, error) {
	id, err := gonanoid.Generate(models.Alphabet, 12)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &storage.User{
		ID:        id,
		Username:  username,
		Password:  hash,
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}, nil
}
