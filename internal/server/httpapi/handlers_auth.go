package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronins/inkpost/internal/common"
	"github.com/avoronins/inkpost/internal/server/models"
)

// refreshCookieName is the httpOnly cookie holding the refresh token. It is
// scoped to the whole API and never readable by page scripts.
const refreshCookieName = "refresh_token"

type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID           string `json:"id"`
	UserName     string `json:"username"`
	TokenVersion int    `json:"tokenVersion"`
}

type authResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, UserName: u.UserName, TokenVersion: u.TokenVersion}
}

func (s *Server) handleSignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, pair, err := s.users.SignUp(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, authResponse{AccessToken: pair.AccessToken, User: toUserResponse(user)})
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, pair, err := s.users.SignIn(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		s.abortWithError(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, authResponse{AccessToken: pair.AccessToken, User: toUserResponse(user)})
}

// handleRefresh rotates the token pair. The refresh token comes exclusively
// from the cookie; there is no body.
func (s *Server) handleRefresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing refresh token"})
		return
	}

	user, pair, err := s.users.Refresh(c.Request.Context(), token)
	if err != nil {
		s.clearRefreshCookie(c)
		s.abortWithError(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, authResponse{AccessToken: pair.AccessToken, User: toUserResponse(user)})
}

func (s *Server) handleLogout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing authorization header"})
		return
	}

	if err := s.users.Logout(c.Request.Context(), user.ID); err != nil {
		s.abortWithError(c, err)
		return
	}

	s.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token,
		int(s.users.RefreshTokenValidity().Seconds()),
		"/", s.config.CookieDomain, s.config.CookieSecure, true)
}

func (s *Server) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1,
		"/", s.config.CookieDomain, s.config.CookieSecure, true)
}
