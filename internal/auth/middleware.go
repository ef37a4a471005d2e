package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

const userKey = "auth.user"

// RequireUser resolves the bearer token to a stored user and makes it
// available through CurrentUser.
func RequireUser(issuer *TokenIssuer, repo internal.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			unauthorized(c, "Not authenticated")
			return
		}

		username, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}

		user, err := repo.GetUser(c.Request.Context(), username)
		if errors.Is(err, internal.ErrNotFound) {
			unauthorized(c, "Could not validate credentials")
			return
		}
		if err != nil {
			log.Printf("error while loading user %q: %v", username, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
