package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/users"
)

// UserLoader resolves an account identifier to an account. Satisfied by
// *users.Repository.
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (*users.User, error)
}

// Protect verifies the Authorization bearer token and loads the caller's
// account into the gin context. Handlers behind it trust the resolution
// completely.
func Protect(issuer *TokenIssuer, loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized. Please login to access this resource.",
			})
			return
		}

		userID, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token. Please login again.",
			})
			return
		}

		user, err := loader.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				// Token was valid but the account is gone
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "User no longer exists",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Server error during authentication",
			})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// CurrentUser extracts the authenticated account from the gin context.
func CurrentUser(c *gin.Context) (*users.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*users.User)
	return user, ok
}
