package controllers

import (
	"net/http"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/auth"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "evoting_token"

type AuthController struct {
	usersStorage storage.UserStorage
	authSecret   string
	tokenTTL     time.Duration
}

func NewAuthController(userStorage storage.UserStorage, authSecret string, tokenTTL time.Duration) *AuthController {
	return &AuthController{
		usersStorage: userStorage,
		authSecret:   authSecret,
		tokenTTL:     tokenTTL,
	}
}

func (c *AuthController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")

	group.POST("/login", c.login)
	group.POST("/logout", c.logout)
	group.GET("/me", transport.AuthMiddleware(c.usersStorage, c.authSecret), c.me)
	group.POST("/change-password", transport.AuthMiddleware(c.usersStorage, c.authSecret), c.changePassword)
}

// login godoc
// @Summary Exchange credentials for a session token
// @Description The token is returned in the body and also set as a cookie so
// @Description browser clients work without an Authorization header.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (c *AuthController) login(g *gin.Context) {
	var req models.LoginRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "username and password are required"})
		return
	}

	user, err := c.usersStorage.GetByUsername(g.Request.Context(), req.Username)
	if err != nil {
		logging.Log.Errorf("AUTH: login lookup failed for %s: %v", req.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "login failed"})
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		// Same response for unknown user and wrong password.
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid username or password", Code: models.CodeUnauthorized})
		return
	}

	token, err := auth.GenerateToken(c.authSecret, c.tokenTTL, user.ID, user.Username, user.Role)
	if err != nil {
		logging.Log.Errorf("AUTH: failed to sign token for %s: %v", user.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "login failed"})
		return
	}

	g.SetCookie(sessionCookieName, token, int(c.tokenTTL.Seconds()), "/", "", false, true)
	logging.Log.Infof("AUTH: user %s (%s) logged in", user.Username, user.Role)
	g.JSON(http.StatusOK, &models.LoginResponse{
		Token: token,
		User:  models.TransformUserFromStorage(user),
	})
}

// logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /api/auth/logout [post]
func (c *AuthController) logout(g *gin.Context) {
	g.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "logged out"})
}

// me godoc
// @Summary Return the calling user's own record
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/me [get]
func (c *AuthController) me(g *gin.Context) {
	g.JSON(http.StatusOK, models.TransformUserFromStorage(transport.CurrentUser(g)))
}

// changePassword godoc
// @Summary Change the calling user's password
// @Tags auth
// @Accept json
// @Produce json
// @Param passwords body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse "Current password wrong"
// @Router /api/auth/change-password [post]
func (c *AuthController) changePassword(g *gin.Context) {
	var req models.ChangePasswordRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "currentPassword and newPassword are required"})
		return
	}
	if len(req.NewPassword) < 6 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "newPassword must be at least 6 characters"})
		return
	}

	user := transport.CurrentUser(g)
	if !auth.CheckPasswordHash(req.CurrentPassword, user.Password) {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "current password is incorrect", Code: models.CodeUnauthorized})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logging.Log.Errorf("AUTH: failed to hash new password for %s: %v", user.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not change password"})
		return
	}
	user.Password = hash
	if err := c.usersStorage.Update(g.Request.Context(), user); err != nil {
		logging.Log.Errorf("AUTH: failed to update password for %s: %v", user.Username, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not change password"})
		return
	}

	logging.Log.Infof("AUTH: user %s changed their password", user.Username)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "password changed"})
}
