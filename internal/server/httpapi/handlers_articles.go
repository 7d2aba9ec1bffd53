package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avoronins/inkpost/internal/server/models"
)

type articleRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageKey string `json:"imageKey"`
}

type articleResponse struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageKey  string    `json:"imageKey,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toArticleResponse(a *models.Article) articleResponse {
	return articleResponse{
		Slug:      a.Slug,
		Title:     a.Title,
		Body:      a.Body,
		ImageKey:  a.ImageKey,
		AuthorID:  a.AuthorID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (s *Server) handleListArticles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	list, err := s.articles.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	out := make([]articleResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toArticleResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"articles": out})
}

func (s *Server) handleGetArticle(c *gin.Context) {
	ctx := c.Request.Context()

	article, err := s.articles.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	resp := toArticleResponse(article)
	if article.ImageKey != "" {
		// an unreachable object store should not break the read path
		url, err := s.articles.PresignedImageURL(ctx, article.ImageKey)
		if err != nil {
			s.logger.Warn(ctx, "presign failed", "key", article.ImageKey, "error", err)
		} else {
			resp.ImageURL = url
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateArticle(c *gin.Context) {
	user, _ := currentUser(c)

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	article, err := s.articles.Create(c.Request.Context(), user.ID, req.Title, req.Body, req.ImageKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toArticleResponse(article))
}

func (s *Server) handleUpdateArticle(c *gin.Context) {
	user, _ := currentUser(c)

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	article, err := s.articles.Update(c.Request.Context(), user.ID, c.Param("slug"), req.Title, req.Body, req.ImageKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toArticleResponse(article))
}

func (s *Server) handleDeleteArticle(c *gin.Context) {
	user, _ := currentUser(c)

	if err := s.articles.Delete(c.Request.Context(), user.ID, c.Param("slug")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// handleImageUploadURL hands the client a presigned PUT URL; the returned key
// is later attached to an article as imageKey.
func (s *Server) handleImageUploadURL(c *gin.Context) {
	key, url, err := s.articles.PresignedImageUpload(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}
