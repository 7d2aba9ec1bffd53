package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avoronins/inkpost/internal/common"
	"github.com/avoronins/inkpost/internal/server/models"
)

const identityKey = "identity"

// RequireAuth verifies the bearer access token and stores the resolved user
// in the gin context. Every failure mode is a 401; the body distinguishes a
// missing header, a bad token and a revoked one.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing authorization header"})
			return
		}

		user, err := s.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token revoked"})
			case errors.Is(err, common.ErrUnauthorized):
				// token holder no longer exists; same status, generic body
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			default:
				s.abortWithError(c, err)
			}
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// currentUser returns the user stored by RequireAuth. Handlers behind the
// guard may assume it is present.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
