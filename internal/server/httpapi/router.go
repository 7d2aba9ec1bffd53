package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with CORS, the public routes and the
// guard-protected routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(s.config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.config.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	// the refresh cookie only travels with credentialed requests
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/signup", s.handleSignUp)
		auth.POST("/signin", s.handleSignIn)
		auth.POST("/refresh", s.handleRefresh)
		auth.POST("/logout", s.RequireAuth(), s.handleLogout)
	}

	router.GET("/users/me", s.RequireAuth(), s.handleMe)

	router.GET("/articles", s.handleListArticles)
	router.GET("/articles/:slug", s.handleGetArticle)
	router.POST("/articles", s.RequireAuth(), s.handleCreateArticle)
	router.PUT("/articles/:slug", s.RequireAuth(), s.handleUpdateArticle)
	router.DELETE("/articles/:slug", s.RequireAuth(), s.handleDeleteArticle)

	router.POST("/images/upload-url", s.RequireAuth(), s.handleImageUploadURL)

	return router
}
