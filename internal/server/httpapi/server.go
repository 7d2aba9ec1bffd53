// Package httpapi exposes the platform over HTTP: gin router, auth guard
// middleware, the auth/article/user handlers and the refresh cookie plumbing.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avoronins/inkpost/internal/logging"
	"github.com/avoronins/inkpost/internal/server/config"
	"github.com/avoronins/inkpost/internal/server/models"
	"github.com/avoronins/inkpost/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// UserService is the slice of services.UserService the HTTP layer needs.
type UserService interface {
	SignUp(ctx context.Context, userName, password string) (*models.User, *services.TokenPair, error)
	SignIn(ctx context.Context, userName, password string) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.User, *services.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	RefreshTokenValidity() time.Duration
}

// ArticleService is the slice of services.ArticleService the HTTP layer needs.
type ArticleService interface {
	Create(ctx context.Context, authorID, title, body, imageKey string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, limit, offset int) ([]*models.Article, error)
	Update(ctx context.Context, userID, slug, title, body, imageKey string) (*models.Article, error)
	Delete(ctx context.Context, userID, slug string) error
	PresignedImageUpload(ctx context.Context) (string, string, error)
	PresignedImageURL(ctx context.Context, key string) (string, error)
}

type Server struct {
	address  string
	logger   logging.Logger
	users    UserService
	articles ArticleService
	config   *config.Config
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, as ArticleService) *Server {
	return &Server{
		address:  cfg.EndpointAddr,
		logger:   l.With("module", "http_server"),
		users:    us,
		articles: as,
		config:   cfg,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, then drains
// in-flight requests before returning.
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
