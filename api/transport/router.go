package transport

import (
	"net/http"
	"os"
	"strings"

	"github.com/akunpubgmatin-arch/e-voting-v1/auth"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const userContextKey = "currentUser"

func NewRouter(ginMode string) *gin.Engine {
	gin.SetMode(ginMode)
	engine := gin.New()
	engine.Use(CORSMiddleware())

	//Bypass swagger for non-local
	if os.Getenv("APP_ENV") == "local" {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	engine.NoRoute(NoRouteHandler())

	return engine
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			logging.Log.Infof("OPTIONS request received:%s", c.Request.URL.Path)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logging.Log.Infof("No routed request received for:%s", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("evoting_token"); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware resolves the calling user from the session token and loads
// the stored record, so the has-voted flags seen downstream are current.
func AuthMiddleware(users storage.UserStorage, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}

		claims, err := auth.ParseToken(secret, token)
		if err != nil {
			logging.Log.Warnf("AUTH: invalid token for %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil || user == nil {
			logging.Log.Warnf("AUTH: token for unknown user %s", claims.UserID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a valid token is present and
// lets the request through anonymously otherwise.
func OptionalAuthMiddleware(users storage.UserStorage, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := auth.ParseToken(secret, token)
		if err != nil {
			c.Next()
			return
		}
		if user, err := users.Get(c.Request.Context(), claims.UserID); err == nil && user != nil {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		logging.Log.Warnf("AUTH: user %s (%s) denied access to %s", user.Username, user.Role, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "FORBIDDEN"})
	}
}

// CurrentUser returns the resolved caller, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *storage.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*storage.User); ok {
			return user
		}
	}
	return nil
}
