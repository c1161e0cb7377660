package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the Authorization
// header and loads the full user record so role changes take effect
// immediately, not at the next token refresh.
func AuthMiddleware(authService service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		user, ok := authenticate(c, authService, userRepo, authHeader)
		if !ok {
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

// OptionalAuth authenticates when an Authorization header is present and lets
// anonymous requests through otherwise. A header that is present but invalid
// is still rejected: a bad token is never silently downgraded to anonymous.
func OptionalAuth(authService service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		user, ok := authenticate(c, authService, userRepo, authHeader)
		if !ok {
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

func authenticate(
	c *gin.Context,
	authService service.AuthService,
	userRepo repository.UserRepository,
	authHeader string,
) (*models.User, bool) {
	// Extract token (format: "Bearer <token>")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		c.Abort()
		return nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return nil, false
	}

	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		// Token outlived the account
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return nil, false
	}

	return user, true
}

func setCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
	c.Set("userID", user.ID)
	c.Set("role", string(user.Role))
}

// CurrentUser returns the authenticated user set by AuthMiddleware or
// OptionalAuth, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// RequireAdmin gates user-management routes. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !permission.CanAccessCollection(user, permission.ActionRead, permission.CollectionUsers) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCatalogWrite gates mutations on titles, categories and genres.
// Must run after AuthMiddleware.
func RequireCatalogWrite(resource permission.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !permission.CanAccessCollection(user, permission.ActionCreate, resource) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
